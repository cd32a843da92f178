// Command generate writes a legacy desk export for trying out "librarydesk import-legacy".
//
// The files mimic what the old browser desk left in local storage: books registered more than once,
// loans with the old "dueDate" field and no "returned" flag, and a few broken entries.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	// NumBooks - Number of distinct books to be created - adapt as needed.
	NumBooks = 200

	// NumLoans - Number of loans to be created - adapt as needed.
	NumLoans = 500

	// DuplicateEveryNth registers every nth book a second time, as the old desk allowed.
	DuplicateEveryNth = 25

	// MalformedEveryNth writes every nth loan without an ISBN.
	MalformedEveryNth = 50

	OutputDir       = "testutil/fixtures"         // The directory to put the export into - should be fine as is.
	OutputBooksFile = "school_library_books.json" // The books export - should be fine as is.
	OutputLoansFile = "school_library_loans.json" // The loans export - should be fine as is.

	loanPeriod      = 14 * 24 * time.Hour
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type legacyBook struct {
	ISBN         string `json:"isbn"`
	Title        string `json:"title"`
	Author       string `json:"author,omitempty"`
	RegisteredAt string `json:"registeredAt"`
}

type legacyLoan struct {
	ISBN    string `json:"isbn"`
	Student string `json:"student"`
	LentAt  string `json:"lentAt"`
	DueDate string `json:"dueDate"`
}

var titles = []string{"Dune", "Emma", "Ulysses", "Beloved", "Middlemarch", "Persuasion", "Solaris", "Kindred"}

var authors = []string{"Frank Herbert", "Jane Austen", "James Joyce", "Toni Morrison", "George Eliot", "", "Stanislaw Lem"}

func main() {
	if err := GenerateLegacyExport(); err != nil {
		panic(fmt.Sprintf("Error generating legacy export: %v\n", err))
	}
}

func GenerateLegacyExport() error {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	outputDir := filepath.Join(projectRoot, OutputDir)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fakeClock := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	random := rand.New(rand.NewPCG(42, 1024))

	books := generateBooks(random, NumBooks, &fakeClock)
	loans := generateLoans(random, books, NumLoans, &fakeClock)

	if err := writeJSON(filepath.Join(outputDir, OutputBooksFile), books); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(outputDir, OutputLoansFile), loans); err != nil {
		return err
	}

	fmt.Printf("Successfully generated %d books and %d loans in %s\n", len(books), len(loans), outputDir)

	return nil
}

func generateBooks(random *rand.Rand, numBooks int, fakeClock *time.Time) []legacyBook {
	books := make([]legacyBook, 0, numBooks+numBooks/DuplicateEveryNth)

	for i := 1; i <= numBooks; i++ {
		*fakeClock = fakeClock.Add(time.Duration(random.IntN(180)+1) * time.Minute)

		book := legacyBook{
			ISBN:         fmt.Sprintf("978-3-%05d-%d", i, i%10),
			Title:        titles[random.IntN(len(titles))],
			Author:       authors[random.IntN(len(authors))],
			RegisteredAt: fakeClock.Format(timestampLayout),
		}
		books = append(books, book)

		if i%DuplicateEveryNth == 0 {
			duplicate := book
			duplicate.Title += " (again)"
			books = append(books, duplicate)
		}
	}

	return books
}

func generateLoans(random *rand.Rand, books []legacyBook, numLoans int, fakeClock *time.Time) []legacyLoan {
	loans := make([]legacyLoan, 0, numLoans)

	for i := 1; i <= numLoans; i++ {
		*fakeClock = fakeClock.Add(time.Duration(random.IntN(90)+1) * time.Minute)

		isbn := books[random.IntN(len(books))].ISBN
		if i%MalformedEveryNth == 0 {
			isbn = ""
		}

		loans = append(loans, legacyLoan{
			ISBN:    isbn,
			Student: fmt.Sprintf("%03d", random.IntN(300)+1),
			LentAt:  fakeClock.Format(timestampLayout),
			DueDate: fakeClock.Add(loanPeriod).Format(timestampLayout),
		})
	}

	return loans
}

func writeJSON(path string, v any) error {
	content, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (no go.mod found)")
}
