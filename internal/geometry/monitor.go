package geometry

// MonitorAt returns the index of the bounds containing p. When p is outside
// every monitor (pointer warped into a gap between mismatched outputs), the
// nearest monitor is used. Returns -1 only when monitors is empty.
func MonitorAt(monitors []Rect, p Point) int {
	if len(monitors) == 0 {
		return -1
	}
	for i, m := range monitors {
		if m.Contains(p) {
			return i
		}
	}

	best, bestDist := 0, -1
	for i, m := range monitors {
		dx := distance1D(p.X, m.X, m.Right()-1)
		dy := distance1D(p.Y, m.Y, m.Bottom()-1)
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distance1D(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}
