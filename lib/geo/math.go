package geo

import "math"

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// intersect returns where segments a0a1 and b0b1 cross, or nil. The
// intersection is snapped to whole units along a, which keeps borders of
// axis aligned shapes exact.
func intersect(a0, a1, b0, b1 *Point) *Point {
	adx, ady := a1.X-a0.X, a1.Y-a0.Y
	bdx, bdy := b1.X-b0.X, b1.Y-b0.Y
	denom := ady*bdx - adx*bdy
	if denom == 0 {
		return nil
	}
	ox, oy := b0.X-a0.X, b0.Y-a0.Y
	s := (bdx*oy - bdy*ox) / denom
	t := (adx*oy - ady*ox) / denom
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return nil
	}
	return NewPoint(a0.X+math.Round(s*adx), a0.Y+math.Round(s*ady))
}
