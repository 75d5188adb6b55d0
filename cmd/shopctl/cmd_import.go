package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/shopdir/internal/core"
	"github.com/JonMunkholm/shopdir/internal/logging"
	"github.com/JonMunkholm/shopdir/internal/metrics"
)

type importFlags struct {
	file        string
	dir         string
	ext         string
	strict      bool
	metricsFile string
}

func importCmd(e *env) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import repair shops from a CSV file",
		Long: `Import reads one CSV file and stores every row as a new repair shop.

Without --file, the first file (by name) with the configured extension in
the import directory is used. Rows that fail to store are logged and
skipped; re-importing the same file stores the shops again.

Exit status is 0 when the file was read to the end, 1 when it could not be
found or read, and 3 with --strict when at least one row failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runImport(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "CSV file to import (overrides IMPORT_FILE)")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "Directory to search for a CSV file (overrides IMPORT_DIR)")
	cmd.Flags().StringVar(&f.ext, "ext", "", "Source file extension (overrides IMPORT_EXTENSION)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Exit with status 3 if any row failed")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")

	return cmd
}

func (e *env) runImport(cmd *cobra.Command, f importFlags) error {
	ctx := cmd.Context()
	ic := e.cfg.Import
	if f.file != "" {
		ic.File = f.file
	}
	if f.dir != "" {
		ic.Dir = f.dir
	}
	if f.ext != "" {
		ic.Extension = f.ext
	}

	m := metrics.New(false)
	logger := logging.WithFields(ctx, "run_id", uuid.NewString())

	var result *core.ImportResult
	err := e.withStore(ctx, func(st shopStore) error {
		importer := core.NewImporter(st, core.CommitConfig{
			Defaults: core.Defaults{
				Region:    ic.DefaultRegion,
				Specialty: ic.DefaultSpecialty,
			},
			ProgressEvery: ic.ProgressEvery,
			Recorder:      m,
			Logger:        logger,
		})

		var runErr error
		result, runErr = importer.Run(ctx, core.ImportOptions{
			Path:      ic.File,
			Dir:       ic.Dir,
			Extension: ic.Extension,
		})
		if result != nil {
			printSummary(e, result)
		}
		if runErr != nil {
			return runErr
		}

		total, err := st.CountShops(ctx)
		if err != nil {
			logger.Warn("could not count stored shops", "error", err)
			return nil
		}
		fmt.Fprintf(e.stdout, "Total shops in database: %d\n", total)
		return nil
	})

	outcome := runOutcome(result, err)
	m.RunFinished(outcome)
	if f.metricsFile != "" {
		if werr := m.WriteTextfile(f.metricsFile); werr != nil {
			logger.Warn("could not write metrics file", "path", f.metricsFile, "error", werr)
		}
	}

	if err != nil {
		msg := "import failed"
		switch {
		case core.IsStructural(err):
			msg = "source file unusable"
		case errors.Is(err, context.Canceled):
			msg = "import interrupted"
		}
		logger.Error(msg, "error", err, "code", core.MapError(err).Code)
		return &exitError{code: exitFailure, err: err}
	}

	if f.strict && result.Partial() {
		return &exitError{
			code: exitPartial,
			err:  fmt.Errorf("%d of %d records failed to import", result.FailedCount(), result.Total),
		}
	}
	return nil
}

func runOutcome(result *core.ImportResult, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeFailed
	case result != nil && result.Partial():
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeSuccess
	}
}

func printSummary(e *env, r *core.ImportResult) {
	fmt.Fprintf(e.stdout, "Imported %d of %d shops from %s\n", r.Imported, r.Total, r.Source)
	if !r.Partial() {
		return
	}
	fmt.Fprintf(e.stdout, "Failed: %d\n", r.FailedCount())
	for _, fr := range r.Failed {
		fmt.Fprintf(e.stdout, "  line %d: %s [%s]\n", fr.Line, fr.Name, fr.Code)
	}
}
