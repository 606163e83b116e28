package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/finchat/backend/internal/domain"
)

// maxConcurrentFiles bounds parallel extraction in a batch upload.
const maxConcurrentFiles = 4

// File is one raw source file in a batch.
type File struct {
	Name string
	Data []byte
}

// FileResult holds the outcome of extracting and normalizing one file.
// A failed file contributes no transactions but never aborts the batch.
type FileResult struct {
	Name         string
	Transactions []domain.Transaction
	Err          error
}

// LoadFiles extracts and normalizes a batch of statement files in parallel.
// Extraction and normalization are pure functions of their own input, so
// files proceed concurrently; the caller appends the surviving transactions
// into its ledger serially. Results come back in input order.
func LoadFiles(ctx context.Context, files []File, keepExtra bool) []FileResult {
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)

	for i, f := range files {
		g.Go(func() error {
			results[i] = FileResult{Name: f.Name}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			table, err := ExtractTable(f.Data, f.Name)
			if err != nil {
				results[i].Err = err
				return nil
			}
			txs, err := Normalize(table, keepExtra)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Transactions = txs
			return nil
		})
	}

	// Workers only record per-file errors, they never return them.
	_ = g.Wait()
	return results
}
