// Package kmeans clusters descriptors into visual words: Lloyd's algorithm
// with arithmetic means for real descriptors and bitwise majority (k-majority)
// for binary descriptors.
package kmeans
