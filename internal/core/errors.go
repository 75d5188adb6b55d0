package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSourceFound is returned when no input file can be located.
	ErrNoSourceFound = errors.New("no source file found")

	// ErrEmptySource is returned when the input has no header line.
	ErrEmptySource = errors.New("empty file")
)

// SourceReadError is a structural failure while reading the input.
// It aborts the run; rows committed before it stay committed.
type SourceReadError struct {
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *SourceReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("read %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// RecordPersistError is a failure to store a single record.
// The run continues with the next row.
type RecordPersistError struct {
	Name string
	Line int
	Err  error
}

func (e *RecordPersistError) Error() string {
	return fmt.Sprintf("persist %q (line %d): %v", e.Name, e.Line, e.Err)
}

func (e *RecordPersistError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err prevents the pipeline from continuing.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	var readErr *SourceReadError
	return errors.Is(err, ErrNoSourceFound) || errors.As(err, &readErr)
}
