package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/shopdir/internal/core"
)

const (
	// DefaultListLimit caps /api/shops when no limit is given.
	DefaultListLimit = 1000
	// MaxListLimit is the largest accepted limit.
	MaxListLimit = 5000
)

var errInvalidQuery = errors.New("invalid query")

// ShopResponse is the JSON form of a stored shop.
type ShopResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zipCode"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating"`
	Specialty   string    `json:"specialty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CountResponse is the body of /api/shops/count.
type CountResponse struct {
	Total int64 `json:"total"`
}

func toShopResponse(s core.StoredShop) ShopResponse {
	return ShopResponse{
		ID:          s.ID,
		Name:        s.Name,
		Address:     s.Address,
		City:        s.City,
		State:       s.State,
		ZipCode:     s.ZipCode,
		Phone:       s.Phone,
		Email:       s.Email,
		Description: s.Description,
		Rating:      s.Rating,
		Specialty:   s.Specialty,
		CreatedAt:   s.CreatedAt,
	}
}

// handleListShops returns shops ordered by name. With q, only shops whose
// name, city or specialty contains q are returned, and limit applies to
// the matches.
func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var shops []core.StoredShop
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		shops, err = s.shops.SearchShops(r.Context(), term, limit)
	} else {
		shops, err = s.shops.ListShops(r.Context(), limit)
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.SearchServed()
	}

	resp := make([]ShopResponse, len(shops))
	for i, shop := range shops {
		resp[i] = toShopResponse(shop)
	}
	writeJSON(w, r, resp)
}

// handleCountShops returns the number of stored shops.
func (s *Server) handleCountShops(w http.ResponseWriter, r *http.Request) {
	total, err := s.shops.CountShops(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, CountResponse{Total: total})
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.shops.Ping(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// parseLimit reads the limit query parameter, capped at MaxListLimit.
func parseLimit(r *http.Request) (int, error) {
	val := strings.TrimSpace(r.URL.Query().Get("limit"))
	if val == "" {
		return DefaultListLimit, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit %q must be a positive integer", errInvalidQuery, val)
	}
	return min(n, MaxListLimit), nil
}
