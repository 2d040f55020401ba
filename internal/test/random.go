package test

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomPointNear returns coordinates within roughly radiusKm of the centre.
// Latitudes are clamped to the valid range.
func RandomPointNear(lat, lng, radiusKm float64) (float64, float64) {
	const kmPerDegree = 111.32
	dLat := (randomFloat()*2 - 1) * radiusKm / kmPerDegree
	scale := math.Cos(lat * math.Pi / 180)
	if scale < 0.01 {
		scale = 0.01
	}
	dLng := (randomFloat()*2 - 1) * radiusKm / (kmPerDegree * scale)
	return math.Max(-90, math.Min(90, lat+dLat)), wrapLongitude(lng + dLng)
}

// RandomQuantity returns a serving count in [lo, hi].
func RandomQuantity(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	rngMu.Lock()
	defer rngMu.Unlock()
	return lo + rng.Intn(hi-lo+1)
}

func wrapLongitude(v float64) float64 {
	for v > 180 {
		v -= 360
	}
	for v < -180 {
		v += 360
	}
	return v
}

func randomFloat() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}
