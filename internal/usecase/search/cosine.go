package search

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|) in [-1, 1].
// Vectors of different length or with zero magnitude have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	// Rounding can push identical vectors slightly past 1.
	return max(-1, min(1, sim))
}
