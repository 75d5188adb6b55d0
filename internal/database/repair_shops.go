package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// RepairShop is a row of repair_shops.
type RepairShop struct {
	ID          pgtype.UUID
	Name        string
	Address     string
	City        string
	State       string
	ZipCode     string
	Phone       string
	Email       pgtype.Text
	Description string
	Rating      pgtype.Float8
	Specialty   string
	CreatedAt   pgtype.Timestamptz
}

const repairShopColumns = `id, name, address, city, state, zip_code, phone, email, description, rating, specialty, created_at`

const insertRepairShop = `
INSERT INTO repair_shops (id, name, address, city, state, zip_code, phone, email, description, rating, specialty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// InsertRepairShopParams are the values of a new repair_shops row.
type InsertRepairShopParams struct {
	ID          pgtype.UUID
	Name        string
	Address     string
	City        string
	State       string
	ZipCode     string
	Phone       string
	Email       pgtype.Text
	Description string
	Rating      pgtype.Float8
	Specialty   string
}

// Args returns the statement arguments in column order.
func (p InsertRepairShopParams) Args() []any {
	return []any{
		p.ID, p.Name, p.Address, p.City, p.State, p.ZipCode,
		p.Phone, p.Email, p.Description, p.Rating, p.Specialty,
	}
}

func (q *Queries) InsertRepairShop(ctx context.Context, arg InsertRepairShopParams) error {
	_, err := q.db.Exec(ctx, insertRepairShop, arg.Args()...)
	return err
}

const countRepairShops = `SELECT COUNT(*) FROM repair_shops`

func (q *Queries) CountRepairShops(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRepairShops).Scan(&count)
	return count, err
}

const listRepairShops = `
SELECT ` + repairShopColumns + `
FROM repair_shops
ORDER BY name, id
LIMIT $1
`

func (q *Queries) ListRepairShops(ctx context.Context, limit int32) ([]RepairShop, error) {
	return q.queryShops(ctx, listRepairShops, limit)
}

const findRepairShopsByCity = `
SELECT ` + repairShopColumns + `
FROM repair_shops
WHERE city ILIKE '%' || $1 || '%'
ORDER BY name, id
LIMIT $2
`

// FindRepairShopsByCity returns shops whose city contains city, ignoring case.
// LIKE wildcards in city are matched literally.
func (q *Queries) FindRepairShopsByCity(ctx context.Context, city string, limit int32) ([]RepairShop, error) {
	return q.queryShops(ctx, findRepairShopsByCity, EscapeLike(city), limit)
}

const searchRepairShops = `
SELECT ` + repairShopColumns + `
FROM repair_shops
WHERE name ILIKE '%' || $1 || '%'
   OR city ILIKE '%' || $1 || '%'
   OR specialty ILIKE '%' || $1 || '%'
ORDER BY name, id
LIMIT $2
`

// SearchRepairShops returns shops whose name, city or specialty contains
// term, ignoring case. The limit applies after filtering.
func (q *Queries) SearchRepairShops(ctx context.Context, term string, limit int32) ([]RepairShop, error) {
	return q.queryShops(ctx, searchRepairShops, EscapeLike(term), limit)
}

func (q *Queries) queryShops(ctx context.Context, sql string, args ...any) ([]RepairShop, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RepairShop
	for rows.Next() {
		var i RepairShop
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Address,
			&i.City,
			&i.State,
			&i.ZipCode,
			&i.Phone,
			&i.Email,
			&i.Description,
			&i.Rating,
			&i.Specialty,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// EscapeLike escapes the LIKE metacharacters in s using the default backslash escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
