package geo

// Route is the polyline a relationship is drawn along.
type Route []*Point

func (r Route) Length() float64 {
	var l float64
	for i := 1; i < len(r); i++ {
		l += r[i-1].Distance(r[i])
	}
	return l
}

// PointAtPercent returns the point pct percent (0-100) along the route.
func (r Route) PointAtPercent(pct float64) *Point {
	if len(r) == 0 {
		return nil
	}
	remaining := r.Length() * Clamp(pct, 0, 100) / 100
	for i := 1; i < len(r); i++ {
		l := r[i-1].Distance(r[i])
		if remaining <= l {
			if l == 0 {
				return r[i-1].Copy()
			}
			return r[i-1].Lerp(r[i], remaining/l)
		}
		remaining -= l
	}
	return r[len(r)-1].Copy()
}
