// Package geo ranks locations by great-circle distance.
package geo

import (
	"math"
	"slices"
)

const (
	earthRadiusKm = 6371.0

	// DefaultLimit is the number of nearest candidates returned when no limit is given.
	DefaultLimit = 2
)

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// PointOf builds a point from nullable coordinates. It returns nil when either is missing.
func PointOf(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &Point{Lat: *lat, Lng: *lng}
}

// DistanceKm returns the haversine distance between a and b in kilometers.
// A missing point yields +Inf, which callers must treat as excluded.
func DistanceKm(a, b *Point) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Ranked is a candidate together with its distance to the anchor.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// Nearest returns up to limit candidates closest to anchor, nearest first.
// Candidates without a point are skipped and equal distances keep input order.
// A non-positive limit means DefaultLimit.
func Nearest[T any](anchor *Point, candidates []T, pointOf func(T) *Point, limit int) []Ranked[T] {
	if anchor == nil || len(candidates) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		p := pointOf(c)
		if p == nil {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: c, DistanceKm: DistanceKm(anchor, p)})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
