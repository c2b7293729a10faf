package declare

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AMAShyp/declare/internal/shelfmap"
)

// locationView is a shelf location plus its rendered outline, ready for the
// map canvas.
type locationView struct {
	shelfmap.Location
	Polygon []shelfmap.Point `json:"polygon"`
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Acquire(r.Context(), sessionKey(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	locs, err := shelfmap.NewStore(sess).Locations(r.Context())
	if err != nil {
		log.Printf("declare-service: list locations: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	views := make([]locationView, 0, len(locs))
	for _, l := range locs {
		views = append(views, locationView{Location: l, Polygon: l.Polygon()})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleLocationsGeoJSON serves the same outlines as a FeatureCollection for
// clients that speak GeoJSON directly.
func (s *Server) handleLocationsGeoJSON(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Acquire(r.Context(), sessionKey(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	locs, err := shelfmap.NewStore(sess).Locations(r.Context())
	if err != nil {
		log.Printf("declare-service: locations geojson: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	features := make([]map[string]any, 0, len(locs))
	for _, l := range locs {
		ring := make([][2]float64, 0, 5)
		for _, p := range l.Polygon() {
			ring = append(ring, [2]float64{p.X, p.Y})
		}
		features = append(features, map[string]any{
			"type": "Feature",
			"geometry": map[string]any{
				"type":        "Polygon",
				"coordinates": [][][2]float64{ring},
			},
			"properties": map[string]any{
				"locid": l.LocID,
				"label": l.Label,
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	})
}

func (s *Server) handleDropdownSections(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	sections, err := st.Sections(r.Context())
	if err != nil {
		log.Printf("declare-service: dropdown sections: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleDropdownValues(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	values, err := st.DropdownValues(r.Context(), section)
	if err != nil {
		log.Printf("declare-service: dropdown values: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	suppliers, err := st.Suppliers(r.Context())
	if err != nil {
		log.Printf("declare-service: list suppliers: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (s *Server) handleAddInventory(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	id, err := st.AddInventory(r.Context(), values)
	if err != nil {
		log.Printf("declare-service: add inventory: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"inventoryId": id})
}

func (s *Server) handleCheckReferences(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	column := r.URL.Query().Get("column")
	value := r.URL.Query().Get("value")
	if table == "" || column == "" || value == "" {
		writeError(w, http.StatusBadRequest, "table, column and value are required")
		return
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	refs, err := st.CheckForeignKeyReferences(r.Context(), table, column, value)
	if err != nil {
		log.Printf("declare-service: check references: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"referencedBy": refs,
		"inUse":        len(refs) > 0,
	})
}
