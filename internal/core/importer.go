package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// ImportOptions selects the source file of a run.
type ImportOptions struct {
	Path      string // explicit file; skips the directory scan
	Dir       string // directory scanned when Path is empty
	Extension string // suffix matched in Dir, DefaultExtension if empty
}

// Importer runs the full pipeline: locate, read, normalize, commit.
type Importer struct {
	committer *Committer
	logger    *slog.Logger
}

// NewImporter creates an Importer that stores shops in store.
func NewImporter(store ShopCreator, cfg CommitConfig) *Importer {
	c := NewCommitter(store, cfg)
	return &Importer{committer: c, logger: c.logger}
}

// Run imports one source file.
//
// A nil error means the file was read to the end; per-row failures are in
// the result. ErrNoSourceFound and *SourceReadError are structural: for the
// latter, the partial result of rows already committed is returned too.
func (im *Importer) Run(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	path, err := ResolveSource(opts.Path, dir, opts.Extension)
	if err != nil {
		return nil, err
	}

	logger := im.logger.With("source", path)
	logger.Info("reading source file")

	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: fmt.Errorf("open: %w", err)}
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rows, err := NewRowReader(NewSourceStream(f, size), path)
	if err != nil {
		return nil, err
	}

	if missing := MissingColumns(rows.Header()); len(missing) > 0 {
		logger.Warn("source is missing columns, defaults will be used",
			"missing", missing,
			"header", rows.Header(),
		)
	}

	result, err := im.committer.Commit(ctx, rows, path)
	if err != nil {
		logger.Error("import aborted",
			"error", err,
			"imported", result.Imported,
			"rows_read", result.Total,
		)
		return result, err
	}

	return result, nil
}
