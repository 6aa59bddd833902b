package transition

import "math"

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is a straight edge between two points.
type Path struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// LinkPath returns the edge from child to parent, clipped to the borders
// of both boxes.
func LinkPath(parent, child NodeState) Path {
	dx := parent.X - child.X
	dy := parent.Y - child.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 || math.IsNaN(norm) {
		norm = 1
	}
	ux, uy := dx/norm, dy/norm
	tc := boxExit(child.Width/2, child.Height/2, ux, uy)
	tp := boxExit(parent.Width/2, parent.Height/2, ux, uy)
	return Path{
		From: Point{X: child.X + ux*tc, Y: child.Y + uy*tc},
		To:   Point{X: parent.X - ux*tp, Y: parent.Y - uy*tp},
	}
}

// boxExit returns the distance from a box centre to its border along the
// unit direction (ux, uy).
func boxExit(hw, hh, ux, uy float64) float64 {
	t := math.Inf(1)
	if ux != 0 {
		t = math.Min(t, hw/math.Abs(ux))
	}
	if uy != 0 {
		t = math.Min(t, hh/math.Abs(uy))
	}
	if math.IsInf(t, 1) {
		return 0
	}
	return t
}

// pointPath is a degenerate path collapsed onto p.
func pointPath(p Point) Path { return Path{From: p, To: p} }
