// Package bow turns descriptor sets into bag-of-words vectors.
//
// A Vocabulary quantizes each descriptor to a visual word and its weight.
// A Builder sums the weights per word, L1-normalizes the result and, on
// request, records a direct index from vocabulary node to keypoint indices.
// Score compares two normalized vectors with the L1 similarity
//
//	s(a, b) = 1 - 0.5 * sum_i |a_i - b_i|
//
// which lies in [0, 1].
package bow
