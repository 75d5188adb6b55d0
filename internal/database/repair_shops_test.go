package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"London":   "London",
		"100%":     `100\%`,
		"st_denis": `st\_denis`,
		`a\b`:      `a\\b`,
		"":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeLike(in), "EscapeLike(%q)", in)
	}
}

func TestInsertRepairShopParamsArgs(t *testing.T) {
	p := InsertRepairShopParams{
		Name:      "Moto Atelier",
		City:      "Paris",
		Rating:    pgtype.Float8{Float64: 4.5, Valid: true},
		Specialty: "Scooter repair",
	}

	args := p.Args()
	assert.Len(t, args, 11)
	assert.Equal(t, "Moto Atelier", args[1])
	assert.Equal(t, "Paris", args[3])
	assert.Equal(t, pgtype.Text{}, args[7], "email defaults to NULL")
	assert.Equal(t, pgtype.Float8{Float64: 4.5, Valid: true}, args[9])
	assert.Equal(t, "Scooter repair", args[10])
}
