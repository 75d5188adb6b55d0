package core

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// DefaultProgressEvery is how often, in rows, the committer logs progress.
const DefaultProgressEvery = 100

// CommitConfig configures a Committer. The zero value is usable.
type CommitConfig struct {
	Defaults      Defaults
	ProgressEvery int
	Recorder      Recorder
	Logger        *slog.Logger
}

// Committer normalizes rows and stores them one at a time.
type Committer struct {
	store         ShopCreator
	defaults      Defaults
	progressEvery int
	recorder      Recorder
	logger        *slog.Logger
}

// NewCommitter creates a Committer writing to store.
func NewCommitter(store ShopCreator, cfg CommitConfig) *Committer {
	c := &Committer{
		store:         store,
		defaults:      cfg.Defaults,
		progressEvery: cfg.ProgressEvery,
		recorder:      cfg.Recorder,
		logger:        cfg.Logger,
	}
	if c.progressEvery <= 0 {
		c.progressEvery = DefaultProgressEvery
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Commit drains rows, persisting each normalized record independently.
//
// A failed create is logged with the shop name, recorded in the result and
// skipped; nothing is retried and nothing is rolled back. A read error from
// rows, or cancellation of ctx, stops the loop and is returned together with
// the partial result. A create that fails because ctx was cancelled is not
// counted as a row.
func (c *Committer) Commit(ctx context.Context, rows RowSource, source string) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{Source: source}

	finish := func() {
		result.Duration = time.Since(start)
	}

	for {
		if err := ctx.Err(); err != nil {
			finish()
			return result, err
		}

		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			finish()
			return result, err
		}

		shop := NormalizeWith(row, c.defaults)
		err = c.store.CreateShop(ctx, shop)
		if err != nil && ctx.Err() != nil {
			// The row was interrupted, not rejected.
			finish()
			return result, ctx.Err()
		}

		result.Total++
		if err != nil {
			c.recordFailure(result, shop.Name, rows.Line(), err)
		} else {
			result.Imported++
			c.recorder.RowImported()
		}

		if result.Total%c.progressEvery == 0 {
			args := []any{"rows", result.Total, "imported", result.Imported, "failed", len(result.Failed)}
			if p, ok := rows.(progressReporter); ok {
				args = append(args, "percent", p.Progress())
			}
			c.logger.Info("import progress", args...)
		}
	}

	finish()
	c.logger.Info("import finished",
		"imported", result.Imported,
		"total", result.Total,
		"failed", len(result.Failed),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (c *Committer) recordFailure(result *ImportResult, name string, line int, err error) {
	persistErr := &RecordPersistError{Name: name, Line: line, Err: err}
	msg := MapError(err)
	c.logger.Error("failed to import shop",
		"name", name,
		"line", line,
		"code", msg.Code,
		"error", err,
	)
	result.Failed = append(result.Failed, FailedRecord{
		Line:   line,
		Name:   name,
		Code:   msg.Code,
		Reason: persistErr.Error(),
	})
	c.recorder.RowFailed()
}
