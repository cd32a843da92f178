// Command librarydesk runs the library desk.
//
// Usage:
//
//	librarydesk serve [flags]
//	librarydesk import-legacy [flags] [books.json loans.json]
//
// serve starts the HTTP API. import-legacy copies the records of the old browser-based desk
// (keys school_library_books and school_library_loans) into the books and loans documents.
// Without file arguments the legacy keys are read from the configured store itself.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/library-desk-go/config"
)

var version = "dev"

var errUsage = errors.New("usage: librarydesk <serve|import-legacy> [flags]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	command := args[0]

	cfg, rest, err := config.Parse(command, args[1:], os.LookupEnv)
	if err != nil {
		return err
	}

	logger := config.NewLogger(os.Stdout, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		return serve(ctx, cfg, logger)
	case "import-legacy":
		return importLegacy(ctx, cfg, rest, logger)
	default:
		return errUsage
	}
}

// logCleanupError logs a failed deferred cleanup.
func logCleanupError(logger *slog.Logger, what string, err error) {
	if err != nil {
		logger.Error("cleanup failed", "resource", what, "error", err.Error())
	}
}
