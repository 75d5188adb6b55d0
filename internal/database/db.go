// Package database holds the SQL for the repair_shops table.
//
// Queries run against any DBTX: the pool in production, a fake in tests.
// The table is created by operators from schema.sql; nothing in this
// module migrates it.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries groups the statements on repair_shops.
type Queries struct {
	db DBTX
}
