// Package shapes registers the built-in report shapes with the report registry.
// Import this package to ensure all shapes are registered.
package shapes

// This file exists to provide a single import point.
// Each shape file uses init() to register its shapes.
