package report

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]*Definition)
	registryMu sync.RWMutex
)

// ErrDuplicateShape is returned by Add for a key that is already registered.
var ErrDuplicateShape = errors.New("shape already registered")

// Register adds a built-in shape to the registry.
// Panics if the shape is invalid or its key is already registered.
func Register(def Definition) {
	if err := Add(def); err != nil {
		panic(err)
	}
}

// Add adds a shape loaded at run time, such as from a YAML file.
func Add(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateShape, def.Info.Key)
	}
	registry[def.Info.Key] = &def
	return nil
}

// Get returns a shape by key.
func Get(key string) (*Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered shapes, sorted by group then by key.
func All() []*Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})
	return result
}

// ByGroup returns the shapes of one group sorted by key.
func ByGroup(group string) []*Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []*Definition
	for _, def := range registry {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})
	return result
}

// Groups returns all unique group names, sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Count returns the number of registered shapes.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered shapes.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]*Definition)
}
