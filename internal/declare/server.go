package declare

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/AMAShyp/declare/internal/auth"
)

type Server struct {
	sessions SessionSource
	rdb      *redis.Client
}

func NewServer(sessions SessionSource, rdb *redis.Client) *Server {
	return &Server{
		sessions: sessions,
		rdb:      rdb,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/items", s.handleItemByBarcode)
	r.Get("/items/{id}/inventory-total", s.handleInventoryTotal)
	r.Get("/items/{id}/locations", s.handleItemLocations)

	r.Get("/declarations/recent", s.handleRecentDeclarations)

	r.Get("/locations", s.handleLocations)
	r.Get("/locations/geojson", s.handleLocationsGeoJSON)

	r.Get("/dropdowns", s.handleDropdownSections)
	r.Get("/dropdowns/{section}", s.handleDropdownValues)
	r.Get("/suppliers", s.handleSuppliers)

	r.Get("/references/check", s.handleCheckReferences)

	// Writes need an authenticated user; lookups stay open.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/declarations", s.handleBulkDeclare)
		r.Post("/inventory", s.handleAddInventory)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "declare-service",
	})
}

// store resolves the caller's session into a Store, writing the error
// response itself on failure.
func (s *Server) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	sess, err := s.sessions.Acquire(r.Context(), sessionKey(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return nil, false
	}
	return NewStore(sess), true
}
