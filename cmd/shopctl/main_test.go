package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/shopdir/internal/config"
	"github.com/JonMunkholm/shopdir/internal/core"
)

const testCSV = `name,address,city,phone,business_type,reviews_count,rating
Moto Atelier,12 Rue de Paris 75015 Paris,"Paris, Île-de-France",0102030405,Scooter repair,12,4.7
Broken Shop,1 Rue X,Lyon,,,,
Garage Sud,"8 Av. du Prado, 13008 Marseille","Marseille, Provence",,Motorcycle dealer,40,4.1
`

type fakeStore struct {
	shops    []core.StoredShop
	failOn   string
	cancelOn string
	cancel   context.CancelFunc
	closed   int
}

func (f *fakeStore) CreateShop(ctx context.Context, shop core.ShopRecord) error {
	if shop.Name == f.cancelOn {
		f.cancel()
		return ctx.Err()
	}
	if shop.Name == f.failOn {
		return &pgconn.PgError{Code: "23502", Message: "null value in column violates not-null constraint"}
	}
	f.shops = append(f.shops, core.StoredShop{ShopRecord: shop})
	return nil
}

func (f *fakeStore) CountShops(context.Context) (int64, error) { return int64(len(f.shops)), nil }

func (f *fakeStore) ListShops(_ context.Context, limit int) ([]core.StoredShop, error) {
	return f.shops[:min(limit, len(f.shops))], nil
}

func (f *fakeStore) FindByCity(_ context.Context, city string, limit int) ([]core.StoredShop, error) {
	var out []core.StoredShop
	for _, s := range f.shops {
		if len(out) < limit && strings.Contains(strings.ToLower(s.City), strings.ToLower(city)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Close() { f.closed++ }

// setup installs st as the store and a minimal environment.
func setup(t *testing.T, st *fakeStore, openErr error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	prevOpen, prevLogger := openStore, slog.Default()
	openStore = func(context.Context, config.DatabaseConfig) (shopStore, error) {
		if openErr != nil {
			return nil, openErr
		}
		return st, nil
	}
	t.Cleanup(func() {
		openStore = prevOpen
		slog.SetDefault(prevLogger)
	})
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), append([]string{"--env-file="}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shops.csv"), []byte(content), 0o644))
	return dir
}

func TestImport_Success(t *testing.T) {
	st := &fakeStore{}
	setup(t, st, nil)
	dir := writeCSV(t, testCSV)

	code, stdout, _ := run(t, "import", "--dir", dir)

	assert.Equal(t, exitOK, code)
	assert.Len(t, st.shops, 3)
	assert.Equal(t, 1, st.closed)
	assert.Contains(t, stdout, "Imported 3 of 3 shops")
	assert.Contains(t, stdout, "Total shops in database: 3")
}

func TestImport_PartialFailure(t *testing.T) {
	st := &fakeStore{failOn: "Broken Shop"}
	setup(t, st, nil)
	dir := writeCSV(t, testCSV)

	code, stdout, stderr := run(t, "import", "--dir", dir)

	assert.Equal(t, exitOK, code, "partial failure is still a completed run")
	assert.Len(t, st.shops, 2)
	assert.Contains(t, stdout, "Imported 2 of 3 shops")
	assert.Contains(t, stdout, "line 3: Broken Shop [DB003]")
	assert.Contains(t, stderr, "failed to import shop")
}

func TestImport_Strict(t *testing.T) {
	st := &fakeStore{failOn: "Broken Shop"}
	setup(t, st, nil)
	dir := writeCSV(t, testCSV)

	code, _, stderr := run(t, "import", "--dir", dir, "--strict")

	assert.Equal(t, exitPartial, code)
	assert.Equal(t, 1, st.closed)
	assert.Contains(t, stderr, "1 of 3 records failed")
}

func TestImport_NoSource(t *testing.T) {
	st := &fakeStore{}
	setup(t, st, nil)

	code, _, stderr := run(t, "import", "--dir", t.TempDir())

	assert.Equal(t, exitFailure, code)
	assert.Empty(t, st.shops)
	assert.Equal(t, 1, st.closed, "store is released on the fatal path")
	assert.Contains(t, stderr, "SRC001")
}

func TestImport_Malformed(t *testing.T) {
	st := &fakeStore{}
	setup(t, st, nil)
	dir := writeCSV(t, "name,city\nFirst,Paris\nSec\"ond,Lyon\n")

	code, stdout, stderr := run(t, "import", "--dir", dir)

	assert.Equal(t, exitFailure, code)
	assert.Len(t, st.shops, 1, "rows before the bad line stay committed")
	assert.Contains(t, stdout, "Imported 1 of 1 shops")
	assert.Contains(t, stderr, "SRC002")
}

func TestImport_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := &fakeStore{cancelOn: "Broken Shop", cancel: cancel}
	setup(t, st, nil)
	dir := writeCSV(t, testCSV)

	var stdout, stderr bytes.Buffer
	code := execute(ctx, []string{"--env-file=", "import", "--dir", dir}, &stdout, &stderr)

	assert.Equal(t, exitFailure, code)
	assert.Len(t, st.shops, 1)
	assert.Equal(t, 1, st.closed)
	assert.Contains(t, stdout.String(), "Imported 1 of 1 shops")
	assert.NotContains(t, stdout.String(), "Failed:")
	assert.Contains(t, stderr.String(), "import interrupted")
	assert.Contains(t, stderr.String(), "context canceled")
}

func TestImport_StoreUnavailable(t *testing.T) {
	setup(t, nil, errors.New("connect to database: dial tcp: connection refused"))

	code, _, stderr := run(t, "import", "--dir", t.TempDir())

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "DB004")
}

func TestImport_ExplicitFileAndMetrics(t *testing.T) {
	st := &fakeStore{}
	setup(t, st, nil)
	dir := writeCSV(t, testCSV)
	file := filepath.Join(dir, "export.txt")
	require.NoError(t, os.Rename(filepath.Join(dir, "shops.csv"), file))
	metricsPath := filepath.Join(t.TempDir(), "shopdir.prom")

	code, _, _ := run(t, "import", "--file", file, "--metrics-file", metricsPath)

	require.Equal(t, exitOK, code)
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shopdir_import_rows_total{result="imported"} 3`)
	assert.Contains(t, string(data), `shopdir_import_runs_total{outcome="success"} 1`)
}

func TestImport_MissingConfig(t *testing.T) {
	setup(t, &fakeStore{}, nil)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	code, _, stderr := run(t, "import")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "DATABASE_URL")
}

func TestCheckAndShow(t *testing.T) {
	st := &fakeStore{shops: []core.StoredShop{
		{ShopRecord: core.ShopRecord{Name: "Camden Bikes", City: "London", State: "England"}},
		{ShopRecord: core.ShopRecord{Name: "Moto Atelier", City: "Paris", State: "France"}},
	}}
	setup(t, st, nil)

	code, stdout, _ := run(t, "check")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Total shops: 2")
	assert.Contains(t, stdout, "- Camden Bikes in London")

	code, stdout, _ = run(t, "check", "--city", "paris")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "paris shops found: 1")

	code, stdout, _ = run(t, "show")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "  - Moto Atelier (Paris)")
	assert.Equal(t, 3, st.closed)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "shopctl version "+Version+"\n", stdout)
}
