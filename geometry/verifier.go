package geometry

// Verifier decides whether correspondences are geometrically consistent.
type Verifier interface {
	Verify(corrs []Correspondence) bool
}

// InlierVerifier is implemented by verifiers that also report how many
// correspondences support the accepted model.
type InlierVerifier interface {
	Verifier
	VerifyInliers(corrs []Correspondence) (inliers int, ok bool)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(corrs []Correspondence) bool

// Verify calls f(corrs).
func (f VerifierFunc) Verify(corrs []Correspondence) bool { return f(corrs) }

// MinCount accepts any set of at least N correspondences.
type MinCount struct {
	N int
}

var _ InlierVerifier = MinCount{}

// Verify reports whether len(corrs) >= N.
func (m MinCount) Verify(corrs []Correspondence) bool {
	return len(corrs) >= m.N
}

// VerifyInliers counts every correspondence as an inlier.
func (m MinCount) VerifyInliers(corrs []Correspondence) (int, bool) {
	return len(corrs), m.Verify(corrs)
}
