package kmeans

import (
	"errors"
	"math"
	"math/rand"
	"slices"

	"github.com/hupe1980/loopgo/feature"
)

// ErrTooFewSamples is returned when there are fewer samples than clusters.
var ErrTooFewSamples = errors.New("kmeans: fewer samples than clusters")

// Train clusters data into k centroids. Initial centroids are chosen with
// seeded k-means++, so the same input and seed give the same result.
func Train[D feature.Descriptor](data []D, k, maxIter int, seed int64) ([]D, error) {
	n := len(data)
	if k <= 0 || n < k {
		return nil, ErrTooFewSamples
	}

	//nolint:gosec
	rng := rand.New(rand.NewSource(seed))
	centroids := seedPlusPlus(data, k, rng)

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	members := make([][]D, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, d := range data {
			best := Assign(d, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		for j := range members {
			members[j] = members[j][:0]
		}
		for i, c := range assignments {
			members[c] = append(members[c], data[i])
		}
		for j := range centroids {
			if len(members[j]) == 0 {
				// Re-seed an empty cluster with a random sample.
				centroids[j] = clone(data[rng.Intn(n)])
				continue
			}
			centroids[j] = mean(members[j])
		}
	}
	return centroids, nil
}

// Assign returns the index of the centroid closest to d. Ties go to the lowest index.
func Assign[D feature.Descriptor](d D, centroids []D) int {
	best := -1
	bestDist := math.Inf(1)
	for j, c := range centroids {
		if dist := feature.Distance(d, c); dist < bestDist {
			bestDist = dist
			best = j
		}
	}
	return best
}

// seedPlusPlus picks each next centroid with probability proportional to its
// squared distance from the closest centroid chosen so far.
func seedPlusPlus[D feature.Descriptor](data []D, k int, rng *rand.Rand) []D {
	centroids := make([]D, 0, k)
	centroids = append(centroids, clone(data[rng.Intn(len(data))]))

	d2 := make([]float64, len(data))
	for i := range d2 {
		d2[i] = math.Inf(1)
	}
	for len(centroids) < k {
		last := centroids[len(centroids)-1]
		var total float64
		for i, d := range data {
			dist := feature.Distance(d, last)
			d2[i] = min(d2[i], dist*dist)
			total += d2[i]
		}

		next := rng.Intn(len(data))
		if total > 0 {
			r := rng.Float64() * total
			for i, w := range d2 {
				r -= w
				if r < 0 {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, clone(data[next]))
	}
	return centroids
}

func clone[D feature.Descriptor](d D) D {
	switch x := any(d).(type) {
	case feature.Binary:
		return any(slices.Clone(x)).(D)
	default:
		return any(slices.Clone(any(d).(feature.Real))).(D)
	}
}

func mean[D feature.Descriptor](members []D) D {
	switch any(members[0]).(type) {
	case feature.Binary:
		size := len(members[0])
		counts := make([]int, size*8)
		for _, m := range members {
			b := any(m).(feature.Binary)
			for i := range counts {
				if b.Bit(i) {
					counts[i]++
				}
			}
		}
		out := make(feature.Binary, size)
		for i, c := range counts {
			if 2*c > len(members) {
				out.SetBit(i)
			}
		}
		return any(out).(D)
	default:
		size := len(members[0])
		sums := make([]float64, size)
		for _, m := range members {
			for i, v := range any(m).(feature.Real) {
				sums[i] += float64(v)
			}
		}
		out := make(feature.Real, size)
		for i, s := range sums {
			out[i] = float32(s / float64(len(members)))
		}
		return any(out).(D)
	}
}
