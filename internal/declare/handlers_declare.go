package declare

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleItemByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := r.URL.Query().Get("barcode")
	if barcode == "" {
		writeError(w, http.StatusBadRequest, "missing barcode")
		return
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	item, err := st.ItemByBarcode(r.Context(), barcode)
	if err != nil {
		log.Printf("declare-service: item by barcode: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "barcode not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleInventoryTotal(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	total, err := st.InventoryTotal(r.Context(), itemID)
	if err != nil {
		log.Printf("declare-service: inventory total: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"itemId": itemID,
		"total":  total,
	})
}

func (s *Server) handleItemLocations(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	locs, err := st.ItemLocations(r.Context(), itemID)
	if err != nil {
		log.Printf("declare-service: item locations: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"itemId":    itemID,
		"locations": locs,
	})
}

func (s *Server) handleBulkDeclare(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")

	var body struct {
		LocID string           `json:"locId"`
		Rows  []DeclarationRow `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "no rows to declare")
		return
	}

	// A page-level location fills in rows that did not carry their own.
	for i := range body.Rows {
		if body.Rows[i].LocID == "" {
			body.Rows[i].LocID = body.LocID
		}
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	out, err := st.BulkDeclare(r.Context(), body.Rows)
	if err != nil {
		log.Printf("declare-service: bulk declare: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if out.OK > 0 {
		s.publishEvent(r.Context(), "declaration.created", map[string]any{
			"userId": userID,
			"locId":  body.LocID,
			"ok":     out.OK,
			"failed": out.Failed,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentDeclarations(w http.ResponseWriter, r *http.Request) {
	locID := r.URL.Query().Get("locId")
	if locID == "" {
		writeError(w, http.StatusBadRequest, "missing locId")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	st, ok := s.store(w, r)
	if !ok {
		return
	}

	recent, err := st.RecentDeclarations(r.Context(), locID, limit)
	if err != nil {
		log.Printf("declare-service: recent declarations: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, recent)
}
