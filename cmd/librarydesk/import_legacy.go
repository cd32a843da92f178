package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AntonStoeckl/library-desk-go/config"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore/memengine"
)

var errImportUsage = errors.New("usage: librarydesk import-legacy [flags] [books.json loans.json]")

func importLegacy(ctx context.Context, cfg config.Config, files []string, logger *slog.Logger) error {
	if len(files) != 0 && len(files) != 2 {
		return errImportUsage
	}

	store, closeStore, err := openStore(ctx, cfg.Store, logger, observability{})
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Engine, err)
	}
	defer closeStore()

	records, err := newRecords(store, logger, observability{})
	if err != nil {
		return err
	}

	source := store
	if len(files) == 2 {
		source, err = seedLegacySource(files[0], files[1])
		if err != nil {
			return err
		}
	}

	report, err := records.ImportLegacy(ctx, source)
	if err != nil {
		return err
	}

	logger.Info("legacy import finished",
		"books", report.Books,
		"loans", report.Loans,
		"duplicate_books", report.DuplicateBooks,
		"unknown_book_loans", report.UnknownBookLoans,
		"malformed_skipped", report.MalformedSkipped,
		"legacy_books_found", report.LegacyBooksFound,
		"legacy_loans_found", report.LegacyLoansFound,
	)

	return nil
}

// seedLegacySource puts the exported browser documents into an in-memory store under the legacy keys.
func seedLegacySource(booksFile, loansFile string) (shell.RecordStore, error) {
	source, err := memengine.NewStore()
	if err != nil {
		return nil, err
	}

	for key, path := range map[string]string{
		shell.LegacyBooksKey: booksFile,
		shell.LegacyLoansKey: loansFile,
	} {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		source.Seed(key, content)
	}

	return source, nil
}
