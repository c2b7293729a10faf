// Package shelfmap loads shelf locations and computes the polygon overlays
// the map pages draw on a normalized 0..1 canvas.
package shelfmap

import (
	"context"
	"fmt"

	"github.com/AMAShyp/declare/internal/dbx"
)

// Location is one shelf rectangle on the store map. Coordinates and sizes
// are fractions of the canvas; rotation is degrees around the center.
type Location struct {
	LocID       string  `json:"locid"`
	Label       string  `json:"label"`
	X           float64 `json:"x_pct"`
	Y           float64 `json:"y_pct"`
	W           float64 `json:"w_pct"`
	H           float64 `json:"h_pct"`
	RotationDeg float64 `json:"rotation_deg"`
}

// Queryer is the read side of the session façade.
type Queryer interface {
	FetchRows(ctx context.Context, query string, args ...any) (*dbx.Table, error)
}

type Store struct {
	db Queryer
}

func NewStore(db Queryer) *Store {
	return &Store{db: db}
}

// Locations returns every shelf location, ordered by locid.
func (st *Store) Locations(ctx context.Context) ([]Location, error) {
	tbl, err := st.db.FetchRows(ctx, `
		SELECT locid, label, x_pct, y_pct, w_pct, h_pct, rotation_deg
		FROM shelf_locations
		ORDER BY locid
	`)
	if err != nil {
		return nil, fmt.Errorf("loading shelf locations: %w", err)
	}

	locs := make([]Location, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		locs = append(locs, Location{
			LocID:       asString(tbl.Value(i, "locid")),
			Label:       asString(tbl.Value(i, "label")),
			X:           asFloat(tbl.Value(i, "x_pct")),
			Y:           asFloat(tbl.Value(i, "y_pct")),
			W:           asFloat(tbl.Value(i, "w_pct")),
			H:           asFloat(tbl.Value(i, "h_pct")),
			RotationDeg: asFloat(tbl.Value(i, "rotation_deg")),
		})
	}
	return locs, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
