package shelfmap

import "math"

// Point is a vertex in normalized canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon returns the closed outline of the location's rectangle: the four
// corners rotated around the center, with the first vertex repeated so the
// client can stroke the path directly.
func (l Location) Polygon() []Point {
	cx := l.X + l.W/2
	cy := l.Y + l.H/2

	rad := l.RotationDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	corners := [4][2]float64{
		{-l.W / 2, -l.H / 2},
		{l.W / 2, -l.H / 2},
		{l.W / 2, l.H / 2},
		{-l.W / 2, l.H / 2},
	}

	pts := make([]Point, 0, 5)
	for _, c := range corners {
		pts = append(pts, Point{
			X: cx + c[0]*cos + c[1]*sin,
			Y: cy - c[0]*sin + c[1]*cos,
		})
	}
	return append(pts, pts[0])
}
