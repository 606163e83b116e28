package ingest

import (
	"context"
	"testing"
)

func TestLoadFiles(t *testing.T) {
	files := []File{
		{Name: "good.csv", Data: []byte(sampleCSV)},
		{Name: "bad.json", Data: []byte("{}")},
		{Name: "nodate.csv", Data: []byte("Description,Debit\nRENT,100.00\n")},
		{Name: "also-good.csv", Data: []byte("Date,Deposits\n2024-01-01,50.00\n")},
	}

	results := LoadFiles(context.Background(), files, true)

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}

	// Results come back in input order regardless of completion order.
	for i, f := range files {
		if results[i].Name != f.Name {
			t.Errorf("result[%d].Name = %q, want %q", i, results[i].Name, f.Name)
		}
	}

	if results[0].Err != nil {
		t.Errorf("good.csv failed: %v", results[0].Err)
	}
	if len(results[0].Transactions) != 2 {
		t.Errorf("good.csv yielded %d transactions, want 2", len(results[0].Transactions))
	}

	// One file failing never aborts the batch.
	if results[1].Err == nil {
		t.Error("bad.json should have failed")
	}
	if results[2].Err == nil {
		t.Error("nodate.csv should have failed schema detection")
	}
	if results[3].Err != nil || len(results[3].Transactions) != 1 {
		t.Errorf("also-good.csv = (%v, %d txs), want 1 transaction",
			results[3].Err, len(results[3].Transactions))
	}
}

func TestLoadFilesEmpty(t *testing.T) {
	results := LoadFiles(context.Background(), nil, false)
	if len(results) != 0 {
		t.Fatalf("got %d results for empty batch", len(results))
	}
}
