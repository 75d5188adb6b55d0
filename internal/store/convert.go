package store

// convert.go maps between core records and pgtype values. Nullable columns
// (email, rating) use Valid=false for absence; nothing is coerced to zero.

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/shopdir/internal/core"
	db "github.com/JonMunkholm/shopdir/internal/database"
)

// ToPgText converts an optional string to pgtype.Text.
// Returns invalid for nil or whitespace-only input.
func ToPgText(s *string) pgtype.Text {
	if s == nil || strings.TrimSpace(*s) == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: strings.TrimSpace(*s), Valid: true}
}

// ToPgFloat8 converts an optional float to pgtype.Float8.
// Returns invalid for nil and non-finite values.
func ToPgFloat8(f *float64) pgtype.Float8 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// FromPgText returns nil for NULL.
func FromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// FromPgFloat8 returns nil for NULL.
func FromPgFloat8(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// PgUUIDToString returns "" for an invalid UUID.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// InsertParams builds the insert parameters for shop under id.
func InsertParams(id uuid.UUID, shop core.ShopRecord) db.InsertRepairShopParams {
	return db.InsertRepairShopParams{
		ID:          ToPgUUID(id),
		Name:        shop.Name,
		Address:     shop.Address,
		City:        shop.City,
		State:       shop.State,
		ZipCode:     shop.ZipCode,
		Phone:       shop.Phone,
		Email:       ToPgText(shop.Email),
		Description: shop.Description,
		Rating:      ToPgFloat8(shop.Rating),
		Specialty:   shop.Specialty,
	}
}

// FromRow converts a database row to a StoredShop.
func FromRow(row db.RepairShop) core.StoredShop {
	shop := core.StoredShop{
		ID: PgUUIDToString(row.ID),
		ShopRecord: core.ShopRecord{
			Name:        row.Name,
			Address:     row.Address,
			City:        row.City,
			State:       row.State,
			ZipCode:     row.ZipCode,
			Phone:       row.Phone,
			Email:       FromPgText(row.Email),
			Description: row.Description,
			Rating:      FromPgFloat8(row.Rating),
			Specialty:   row.Specialty,
		},
	}
	if row.CreatedAt.Valid {
		shop.CreatedAt = row.CreatedAt.Time
	}
	return shop
}

// FromRows converts database rows to StoredShops, preserving order.
func FromRows(rows []db.RepairShop) []core.StoredShop {
	out := make([]core.StoredShop, len(rows))
	for i, r := range rows {
		out[i] = FromRow(r)
	}
	return out
}
