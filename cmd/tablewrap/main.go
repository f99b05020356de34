// Command tablewrap extracts tables from broker and bank report exports.
//
// Usage:
//
//	tablewrap serve
//	tablewrap shapes
//	tablewrap extract -shape KEY [-format csv|tsv|xlsx] [-sheet NAME] [-save] FILE
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tablewrap/internal/config"
	"github.com/JonMunkholm/tablewrap/internal/logging"
	"github.com/JonMunkholm/tablewrap/internal/report"
	_ "github.com/JonMunkholm/tablewrap/internal/report/shapes" // Register built-in shapes
)

const usage = `usage:
  tablewrap serve                 run the HTTP API
  tablewrap shapes                list report shapes
  tablewrap extract -shape KEY [-format csv|tsv|xlsx] [-sheet NAME] [-save] FILE
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	// Logs go to stderr, stdout is reserved for command output
	logger := logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("configuration loaded", "config", cfg.String(), "dotenv", envLoaded)

	if err := loadShapes(cfg.Import.ShapesFile, logger); err != nil {
		logger.Error("failed to load shapes", "file", cfg.Import.ShapesFile, "error", err)
		return 1
	}

	switch args[0] {
	case "serve":
		err = serve(ctx, cfg)
	case "shapes":
		err = listShapes(stdout)
	case "extract":
		err = extract(ctx, cfg, args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		if exit, ok := err.(exitError); ok {
			fmt.Fprintln(stderr, exit.msg)
			return exit.code
		}
		logger.Error("command failed", "command", args[0], "error", err)
		return 1
	}
	return 0
}

// exitError ends the command with a message and exit code instead of an error log.
type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }

// loadShapes registers the shapes declared in path, if any.
func loadShapes(path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	defs, err := report.LoadFile(path)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := report.Add(def); err != nil {
			return err
		}
	}
	logger.Info("shapes loaded", "file", path, "count", len(defs))
	return nil
}

func listShapes(w io.Writer) error {
	for _, group := range report.Groups() {
		fmt.Fprintf(w, "%s\n", group)
		for _, def := range report.ByGroup(group) {
			fmt.Fprintf(w, "  %-20s %s (table %q)\n", def.Info.Key, def.Info.Label, def.Info.Table)
		}
	}
	return nil
}
