package shelfmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonUnrotated(t *testing.T) {
	loc := Location{LocID: "A1", X: 0.1, Y: 0.2, W: 0.2, H: 0.1}

	pts := loc.Polygon()
	require.Len(t, pts, 5)
	assert.Equal(t, pts[0], pts[4], "polygon must be closed")

	assert.InDelta(t, 0.1, pts[0].X, 1e-9)
	assert.InDelta(t, 0.2, pts[0].Y, 1e-9)
	assert.InDelta(t, 0.3, pts[2].X, 1e-9)
	assert.InDelta(t, 0.3, pts[2].Y, 1e-9)
}

func TestPolygonRotationPreservesCenter(t *testing.T) {
	loc := Location{X: 0.4, Y: 0.4, W: 0.2, H: 0.1, RotationDeg: 37}

	pts := loc.Polygon()
	var cx, cy float64
	for _, p := range pts[:4] {
		cx += p.X
		cy += p.Y
	}
	assert.InDelta(t, 0.5, cx/4, 1e-9)
	assert.InDelta(t, 0.45, cy/4, 1e-9)
}

func TestPolygonFullTurnMatchesUnrotated(t *testing.T) {
	base := Location{X: 0.1, Y: 0.1, W: 0.3, H: 0.2}
	turned := base
	turned.RotationDeg = 360

	a := base.Polygon()
	b := turned.Polygon()
	for i := range a {
		assert.InDelta(t, a[i].X, b[i].X, 1e-9)
		assert.InDelta(t, a[i].Y, b[i].Y, 1e-9)
	}
}

func TestPolygonRotationKeepsDiagonal(t *testing.T) {
	loc := Location{X: 0, Y: 0, W: 0.2, H: 0.1, RotationDeg: 90}

	pts := loc.Polygon()
	diag := math.Hypot(pts[2].X-pts[0].X, pts[2].Y-pts[0].Y)
	assert.InDelta(t, math.Hypot(0.2, 0.1), diag, 1e-9)
}
