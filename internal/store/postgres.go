// Package store persists repair shops in PostgreSQL.
//
// Postgres wraps a pgxpool.Pool and the generated queries in
// internal/database. It implements core.ShopStore for the import command
// and the read methods used by the HTTP API and diagnostics.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/shopdir/internal/config"
	"github.com/JonMunkholm/shopdir/internal/core"
	db "github.com/JonMunkholm/shopdir/internal/database"
)

// Postgres is a repair shop store backed by a connection pool.
type Postgres struct {
	pool    *pgxpool.Pool
	queries *db.Queries
	newID   func() uuid.UUID
}

var _ core.ShopStore = (*Postgres)(nil)

// Open connects to the database described by cfg and verifies the
// connection with a ping. The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "name", databaseName(cfg.URL))

	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool:    pool,
		queries: db.New(pool),
		newID:   uuid.New,
	}
}

// CreateShop inserts shop under a freshly generated id.
func (p *Postgres) CreateShop(ctx context.Context, shop core.ShopRecord) error {
	if err := p.queries.InsertRepairShop(ctx, InsertParams(p.newID(), shop)); err != nil {
		return fmt.Errorf("insert repair shop: %w", err)
	}
	return nil
}

// CountShops returns the number of stored shops.
func (p *Postgres) CountShops(ctx context.Context) (int64, error) {
	n, err := p.queries.CountRepairShops(ctx)
	if err != nil {
		return 0, fmt.Errorf("count repair shops: %w", err)
	}
	return n, nil
}

// ListShops returns up to limit shops ordered by name.
func (p *Postgres) ListShops(ctx context.Context, limit int) ([]core.StoredShop, error) {
	rows, err := p.queries.ListRepairShops(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list repair shops: %w", err)
	}
	return FromRows(rows), nil
}

// FindByCity returns up to limit shops whose city contains city, ignoring case.
func (p *Postgres) FindByCity(ctx context.Context, city string, limit int) ([]core.StoredShop, error) {
	rows, err := p.queries.FindRepairShopsByCity(ctx, city, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find repair shops by city: %w", err)
	}
	return FromRows(rows), nil
}

// Ping checks that the database is reachable.
// SearchShops returns up to limit shops whose name, city or specialty
// contains term, ignoring case. A blank term lists every shop.
func (p *Postgres) SearchShops(ctx context.Context, term string, limit int) ([]core.StoredShop, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return p.ListShops(ctx, limit)
	}
	rows, err := p.queries.SearchRepairShops(ctx, term, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search repair shops: %w", err)
	}
	return FromRows(rows), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the pool. It is safe to call on a nil store.
func (p *Postgres) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}

func clampLimit(limit int) int32 {
	switch {
	case limit < 0:
		return 0
	case limit > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(limit)
	}
}

// databaseName returns the database path of a connection URL without credentials.
func databaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
