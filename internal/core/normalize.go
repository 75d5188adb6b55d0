package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Source columns read by Normalize. Other columns are ignored.
const (
	ColName         = "name"
	ColAddress      = "address"
	ColCity         = "city" // "locality, region"
	ColPhone        = "phone"
	ColBusinessType = "business_type"
	ColReviewsCount = "reviews_count"
	ColRating       = "rating"
)

// Columns lists the recognized source columns in their usual order.
var Columns = []string{
	ColName, ColAddress, ColCity, ColPhone, ColBusinessType, ColReviewsCount, ColRating,
}

// Fallback values for absent or empty cells.
const (
	DefaultName        = "Unknown"
	DefaultRegion      = "France"
	DefaultSpecialty   = "Motorcycle repair shop"
	DefaultReviewCount = "0"
)

// postalCodePattern matches a standalone five-digit run.
var postalCodePattern = regexp.MustCompile(`\b\d{5}\b`)

// Defaults holds the configurable fallbacks used by NormalizeWith.
// Empty fields fall back to the package defaults.
type Defaults struct {
	Region    string
	Specialty string
}

func (d Defaults) region() string {
	if d.Region == "" {
		return DefaultRegion
	}
	return d.Region
}

func (d Defaults) specialty() string {
	if d.Specialty == "" {
		return DefaultSpecialty
	}
	return d.Specialty
}

// Normalize converts a raw row into a ShopRecord using the built-in defaults.
// Cells are trimmed as described on NormalizeWith.
func Normalize(row RawRow) ShopRecord {
	return NormalizeWith(row, Defaults{})
}

// NormalizeWith converts a raw row into a ShopRecord. It has no side effects
// and never leaves a field unresolved: whitespace-only cells count as absent.
// Every cell is trimmed before use, so a name of "  Foo " is stored as "Foo".
func NormalizeWith(row RawRow, defaults Defaults) ShopRecord {
	address := row.Get(ColAddress)
	city, state := SplitLocality(row.Get(ColCity))
	if state == "" {
		state = defaults.region()
	}

	specialty := orDefault(row.Get(ColBusinessType), defaults.specialty())
	reviews := orDefault(row.Get(ColReviewsCount), DefaultReviewCount)

	return ShopRecord{
		Name:        orDefault(row.Get(ColName), DefaultName),
		Address:     address,
		City:        city,
		State:       state,
		ZipCode:     ExtractPostalCode(address),
		Phone:       row.Get(ColPhone),
		Email:       nil,
		Description: Describe(specialty, reviews),
		Rating:      ParseRating(row.Get(ColRating)),
		Specialty:   specialty,
	}
}

// ExtractPostalCode returns the first standalone five-digit token in address,
// or "" when there is none. Longer digit runs do not match.
func ExtractPostalCode(address string) string {
	return postalCodePattern.FindString(address)
}

// SplitLocality splits "locality, region" at the first comma. Further commas
// stay in the region. Both parts are trimmed; region is "" without a comma.
func SplitLocality(raw string) (locality, region string) {
	parts := strings.SplitN(raw, ",", 2)
	locality = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		region = strings.TrimSpace(parts[1])
	}
	return locality, region
}

// ParseRating parses a decimal rating. Empty, non-numeric and non-finite
// input yields nil, which is distinct from a zero rating.
func ParseRating(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Describe builds the shop description sentence.
func Describe(businessType, reviewsCount string) string {
	return fmt.Sprintf("%s. %s reviews.", businessType, reviewsCount)
}

// MissingColumns returns the recognized columns absent from header, in
// Columns order. Missing columns are not an error: their fields are defaulted.
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeHeader(h)] = true
	}

	var missing []string
	for _, col := range Columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}
