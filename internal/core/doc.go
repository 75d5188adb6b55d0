// Package core implements the repair shop import pipeline.
//
// The package holds no connections and imports no HTTP code; it can be driven by the
// CLI, the web server or tests. A run is a single forward pass:
//
//  1. [ResolveSource] picks the input file, either the explicit path or the
//     single CSV file found by [LocateSource].
//  2. [RowReader] decodes the file lazily into [RawRow] values, one at a time.
//  3. [NormalizeWith] turns each row into a fully defaulted [ShopRecord].
//  4. [Committer] persists records one by one through a [ShopCreator],
//     isolating per-record failures.
//
// [Importer] wires the four stages together.
//
// # Errors
//
// [ErrNoSourceFound] and [*SourceReadError] are structural and end the run.
// A failed create is wrapped in [*RecordPersistError], logged, counted in
// [ImportResult.Failed] and skipped. [MapError] assigns the codes used in logs
// and API responses.
//
// # Re-imports
//
// Stores are append-only. Importing the same file twice stores every row
// twice; there is no natural key.
package core
