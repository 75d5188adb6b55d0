package core

// streaming.go prepares a source file for the CSV decoder without buffering
// it: a byte order mark is dropped (UTF-16 files with a BOM are decoded to
// UTF-8), invalid UTF-8 becomes U+FFFD, and raw bytes are counted so progress
// can be reported against the file size.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader creates a counting reader with an optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	pct := int(r.BytesRead * 100 / r.Total)
	if pct > 100 {
		return 100
	}
	return pct
}

// SourceStream is the decoded view of a source file.
type SourceStream struct {
	decoded io.Reader
	raw     *CountingReader
}

// NewSourceStream wraps r with BOM handling, UTF-8 repair and byte counting.
// size is the file size in bytes, or 0 when unknown.
func NewSourceStream(r io.Reader, size int64) *SourceStream {
	raw := NewCountingReader(r, size)
	// BOMOverride passes the body of a UTF-8 BOM file through untouched,
	// so ill-formed bytes are repaired after it.
	decoder := transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.ReplaceIllFormed(),
	)
	return &SourceStream{
		decoded: transform.NewReader(raw, decoder),
		raw:     raw,
	}
}

// Read implements io.Reader.
func (s *SourceStream) Read(p []byte) (int, error) {
	return s.decoded.Read(p)
}

// BytesRead returns the number of raw bytes consumed from the source.
func (s *SourceStream) BytesRead() int64 {
	return s.raw.BytesRead
}

// Progress returns the percentage of the source consumed, 0 if the size is unknown.
func (s *SourceStream) Progress() int {
	return s.raw.Progress()
}
