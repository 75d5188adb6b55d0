// Package diagnostics prints read-only summaries of the shop table.
// They are meant for an operator checking an import from the command line.
package diagnostics

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/shopdir/internal/core"
)

const (
	// DefaultCity is the city CheckData looks for when none is given.
	DefaultCity = "London"

	cityMatchLimit  = 5
	citySampleLimit = 10
	searchableLimit = 100
	showLimit       = 20
)

// ShopReader is the read side of the shop store.
type ShopReader interface {
	CountShops(ctx context.Context) (int64, error)
	ListShops(ctx context.Context, limit int) ([]core.StoredShop, error)
	FindByCity(ctx context.Context, city string, limit int) ([]core.StoredShop, error)
}

// CheckData writes the total shop count, the first shops whose city
// contains city, and a sample of stored "city, state" pairs.
func CheckData(ctx context.Context, src ShopReader, w io.Writer, city string) error {
	if city == "" {
		city = DefaultCity
	}

	total, err := src.CountShops(ctx)
	if err != nil {
		return fmt.Errorf("check data: %w", err)
	}
	fmt.Fprintf(w, "Total shops: %d\n", total)

	matches, err := src.FindByCity(ctx, city, cityMatchLimit)
	if err != nil {
		return fmt.Errorf("check data: %w", err)
	}
	fmt.Fprintf(w, "\n%s shops found: %d\n", city, len(matches))
	if len(matches) > 0 {
		fmt.Fprintf(w, "\nFirst few %s shops:\n", city)
		for _, s := range matches {
			fmt.Fprintf(w, "- %s in %s\n", s.Name, s.City)
		}
	}

	sample, err := src.ListShops(ctx, citySampleLimit)
	if err != nil {
		return fmt.Errorf("check data: %w", err)
	}
	fmt.Fprintln(w, "\nSample of cities in database:")
	for _, s := range sample {
		fmt.Fprintf(w, "- %s, %s\n", s.City, s.State)
	}
	return nil
}

// ShowSearchable writes the distinct cities and shop names a user could
// search for, taken from the first stored shops.
func ShowSearchable(ctx context.Context, src ShopReader, w io.Writer) error {
	shops, err := src.ListShops(ctx, searchableLimit)
	if err != nil {
		return fmt.Errorf("show searchable: %w", err)
	}

	fmt.Fprint(w, "=== SEARCHABLE DATA IN YOUR DATABASE ===\n\n")

	fmt.Fprintf(w, "Unique Cities (first %d):\n", showLimit)
	for _, c := range UniqueCities(shops, showLimit) {
		fmt.Fprintf(w, "  - %s\n", c)
	}

	fmt.Fprintf(w, "\nShop Names (first %d):\n", showLimit)
	for i, s := range shops {
		if i == showLimit {
			break
		}
		fmt.Fprintf(w, "  - %s (%s)\n", s.Name, s.City)
	}
	return nil
}

// UniqueCities returns up to limit distinct cities in first-seen order.
func UniqueCities(shops []core.StoredShop, limit int) []string {
	seen := make(map[string]struct{}, len(shops))
	var cities []string
	for _, s := range shops {
		if len(cities) == limit {
			break
		}
		if _, ok := seen[s.City]; ok {
			continue
		}
		seen[s.City] = struct{}{}
		cities = append(cities, s.City)
	}
	return cities
}
