// Package testutil provides testing utilities for loopgo.
//
// This package is intended for use in tests and examples only. It provides
// seeded generators for binary descriptors, synthetic "places" (descriptor
// sets drawn from a disjoint pool of visual words), and synthetic grayscale
// scenes with strong corners.
//
// # Synthetic Places
//
//	rng := testutil.NewRNG(seed)
//	words := rng.BinaryDescriptors(256, 32)
//	frame := rng.Place(words, pool, 40, 2) // 40 noisy samples of the pool's words
package testutil
