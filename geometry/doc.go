// Package geometry checks that a loop candidate is spatially consistent with
// the query frame.
//
// Correspondences are found by nearest-neighbour search in descriptor space,
// either over all pairs (Match) or only between keypoints that fell under the
// same vocabulary node (MatchDirect). A Verifier then decides whether the
// correspondences agree with a geometric model. FundamentalVerifier fits an
// epipolar geometry with RANSAC; MinCount only counts.
package geometry
