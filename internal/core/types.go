package core

import (
	"context"
	"time"
)

// RawRow maps a lower-cased CSV header name to the raw cell text of one row.
// It only exists between the row reader and Normalize.
type RawRow map[string]string

// Get returns the trimmed cell for column, or "" when the row has no such cell.
func (r RawRow) Get(column string) string {
	return trimCell(r[column])
}

// ShopRecord is a normalized repair shop ready for persistence.
// Every field is resolved; absent input is replaced by its default.
type ShopRecord struct {
	Name        string
	Address     string
	City        string
	State       string
	ZipCode     string
	Phone       string
	Email       *string // not present in the source format, always nil on import
	Description string
	Rating      *float64
	Specialty   string
}

// StoredShop is a ShopRecord as read back from the store.
type StoredShop struct {
	ID string
	ShopRecord
	CreatedAt time.Time
}

// ShopCreator appends a new shop. There is no update or upsert.
type ShopCreator interface {
	CreateShop(ctx context.Context, shop ShopRecord) error
}

// ShopStore is the persistence handle used by the import command.
// Close is called exactly once, when the run ends.
type ShopStore interface {
	ShopCreator
	CountShops(ctx context.Context) (int64, error)
	Close()
}

// RowSource yields raw rows in file order. Next returns io.EOF after the last row.
type RowSource interface {
	Next() (RawRow, error)
	// Line is the 1-based source line of the row last returned by Next.
	Line() int
}

// Recorder receives per-row outcomes, e.g. for metrics.
type Recorder interface {
	RowImported()
	RowFailed()
}

type nopRecorder struct{}

func (nopRecorder) RowImported() {}
func (nopRecorder) RowFailed()   {}

// FailedRecord describes a row that could not be persisted.
type FailedRecord struct {
	Line   int
	Name   string
	Code   string // error code from MapError
	Reason string
}

// ImportResult contains the tally of an import run.
type ImportResult struct {
	Source   string
	Total    int
	Imported int
	Failed   []FailedRecord
	Duration time.Duration
}

// FailedCount returns the number of rows that were not persisted.
func (r *ImportResult) FailedCount() int {
	return len(r.Failed)
}

// Partial reports whether at least one row failed.
func (r *ImportResult) Partial() bool {
	return len(r.Failed) > 0
}
