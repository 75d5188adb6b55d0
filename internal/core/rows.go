package core

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// progressReporter is implemented by SourceStream.
type progressReporter interface {
	Progress() int
}

// RowReader decodes CSV rows lazily into RawRow values.
// The first record is the header. It is not safe for concurrent use.
type RowReader struct {
	csv      *csv.Reader
	src      io.Reader
	path     string
	header   []string
	line     int
	rowCount int
}

// NewRowReader reads the header from r and returns a reader positioned at the
// first data row. path is only used in error messages.
//
// Quoting is strict: a bare or unterminated quote is a *SourceReadError.
// Records may have fewer or more fields than the header.
func NewRowReader(r io.Reader, path string) (*RowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rr := &RowReader{csv: cr, src: r, path: path}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SourceReadError{Path: path, Err: ErrEmptySource}
	}
	if err != nil {
		return nil, rr.readError(err)
	}

	rr.header = make([]string, len(header))
	for i, h := range header {
		rr.header[i] = normalizeHeader(h)
	}
	rr.line = 1

	return rr, nil
}

// Header returns the normalized header names.
func (r *RowReader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next non-blank row, or io.EOF when the input is exhausted.
// Any other error is a *SourceReadError and the reader must not be used again.
func (r *RowReader) Next() (RawRow, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, r.readError(err)
		}

		r.line, _ = r.csv.FieldPos(0)
		if isEmptyRow(record) {
			continue
		}

		row := make(RawRow, len(r.header))
		for i, name := range r.header {
			if i >= len(record) {
				break
			}
			if name == "" {
				continue
			}
			// First column wins when a header name repeats.
			if _, seen := row[name]; !seen {
				row[name] = record[i]
			}
		}
		r.rowCount++
		return row, nil
	}
}

// Line returns the source line of the row last returned by Next.
func (r *RowReader) Line() int {
	return r.line
}

// Rows returns the number of data rows returned so far.
func (r *RowReader) Rows() int {
	return r.rowCount
}

// Progress returns the percentage of the input consumed when the underlying
// reader can tell, otherwise 0.
func (r *RowReader) Progress() int {
	if p, ok := r.src.(progressReporter); ok {
		return p.Progress()
	}
	return 0
}

func (r *RowReader) readError(err error) error {
	line := 0
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		line = parseErr.Line
	}
	return &SourceReadError{Path: r.path, Line: line, Err: err}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
