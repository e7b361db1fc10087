package parser

import (
	"errors"
	"fmt"
)

var (
	ErrUnparseableDate   = errors.New("unparseable date")
	ErrUnparseableAmount = errors.New("unparseable amount")
	ErrNoMatchingParser  = errors.New("no matching parser")
	ErrMalformedFile     = errors.New("malformed file")
	ErrDuplicateParser   = errors.New("duplicate parser registration")
	ErrUnreadableFile    = errors.New("unreadable file")
)

// RowError records a data row that was skipped while parsing a file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFile, fmt.Sprintf(format, args...))
}
