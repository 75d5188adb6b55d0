package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/shopdir/internal/core"
)

type fakeReader struct {
	shops []core.StoredShop
	err   error

	lastCity  string
	lastLimit int
}

func (f *fakeReader) CountShops(context.Context) (int64, error) {
	return int64(len(f.shops)), f.err
}

func (f *fakeReader) ListShops(_ context.Context, limit int) ([]core.StoredShop, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.shops) {
		limit = len(f.shops)
	}
	return f.shops[:limit], nil
}

func (f *fakeReader) FindByCity(_ context.Context, city string, limit int) ([]core.StoredShop, error) {
	f.lastCity, f.lastLimit = city, limit
	var out []core.StoredShop
	for _, s := range f.shops {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(s.City), strings.ToLower(city)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func shop(name, city, state string) core.StoredShop {
	return core.StoredShop{ShopRecord: core.ShopRecord{Name: name, City: city, State: state}}
}

func TestCheckData(t *testing.T) {
	src := &fakeReader{shops: []core.StoredShop{
		shop("Moto Atelier", "Paris", "Île-de-France"),
		shop("Camden Bikes", "London", "England"),
		shop("Garage Sud", "Marseille", "Provence"),
	}}
	var buf bytes.Buffer

	require.NoError(t, CheckData(context.Background(), src, &buf, ""))

	out := buf.String()
	assert.Contains(t, out, "Total shops: 3\n")
	assert.Contains(t, out, "London shops found: 1\n")
	assert.Contains(t, out, "- Camden Bikes in London\n")
	assert.Contains(t, out, "- Paris, Île-de-France\n")
	assert.Contains(t, out, "- Marseille, Provence\n")
	assert.Equal(t, DefaultCity, src.lastCity)
	assert.Equal(t, 5, src.lastLimit)
}

func TestCheckData_NoMatches(t *testing.T) {
	src := &fakeReader{shops: []core.StoredShop{shop("Moto Atelier", "Paris", "France")}}
	var buf bytes.Buffer

	require.NoError(t, CheckData(context.Background(), src, &buf, "lyon"))

	assert.Contains(t, buf.String(), "lyon shops found: 0\n")
	assert.NotContains(t, buf.String(), "First few")
}

func TestCheckData_Error(t *testing.T) {
	cause := errors.New("connection refused")
	err := CheckData(context.Background(), &fakeReader{err: cause}, &bytes.Buffer{}, "")
	assert.ErrorIs(t, err, cause)
}

func TestShowSearchable(t *testing.T) {
	var shops []core.StoredShop
	for i := 0; i < 30; i++ {
		shops = append(shops, shop(fmt.Sprintf("Shop %02d", i), fmt.Sprintf("City %d", i%25), "France"))
	}
	var buf bytes.Buffer

	require.NoError(t, ShowSearchable(context.Background(), &fakeReader{shops: shops}, &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== SEARCHABLE DATA IN YOUR DATABASE ===\n\n"))
	assert.Contains(t, out, "  - City 19\n")
	assert.NotContains(t, out, "  - City 20\n")
	assert.Contains(t, out, "  - Shop 19 (City 19)\n")
	assert.NotContains(t, out, "Shop 20")
}

func TestUniqueCities(t *testing.T) {
	shops := []core.StoredShop{
		shop("a", "Paris", ""), shop("b", "Lyon", ""), shop("c", "Paris", ""), shop("d", "Nice", ""),
	}
	assert.Equal(t, []string{"Paris", "Lyon", "Nice"}, UniqueCities(shops, 20))
	assert.Equal(t, []string{"Paris", "Lyon"}, UniqueCities(shops, 2))
	assert.Empty(t, UniqueCities(nil, 20))
}
