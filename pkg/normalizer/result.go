package normalizer

import (
	"fmt"

	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/parser"
)

// FileResult describes what happened to one input file.
type FileResult struct {
	Path           string
	Parser         string
	Count          int
	Warnings       []parser.RowError
	PendingSkipped int
	Err            error
}

func (f FileResult) OK() bool { return f.Err == nil }

// Result is the outcome of a batch.
type Result struct {
	Transactions []models.Transaction
	Files        []FileResult
	Duplicates   int
}

func (r *Result) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() {
			n++
		}
	}
	return n
}

func (r *Result) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

func (r *Result) PendingSkipped() int {
	n := 0
	for _, f := range r.Files {
		n += f.PendingSkipped
	}
	return n
}

func (r *Result) Warnings() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Warnings)
	}
	return n
}

// Err reports a batch that produced nothing usable.
func (r *Result) Err() error {
	switch {
	case len(r.Files) == 0:
		return fmt.Errorf("no input files")
	case r.Succeeded() == 0:
		return fmt.Errorf("none of the %d files could be parsed", len(r.Files))
	case len(r.Transactions) == 0:
		return fmt.Errorf("no transactions found in %d files", r.Succeeded())
	}
	return nil
}

// Summary is a one-line report of the batch.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d transactions from %d/%d files", len(r.Transactions), r.Succeeded(), len(r.Files))
	if r.Duplicates > 0 {
		s += fmt.Sprintf(", %d duplicates removed", r.Duplicates)
	}
	if p := r.PendingSkipped(); p > 0 {
		s += fmt.Sprintf(", %d pending skipped", p)
	}
	if w := r.Warnings(); w > 0 {
		s += fmt.Sprintf(", %d rows skipped", w)
	}
	return s
}
