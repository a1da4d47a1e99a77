package feature

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// Binary is a packed binary descriptor (e.g. BRIEF, ORB). Bit i lives in
// byte i/8 at position i%8.
type Binary []byte

// Real is a real-valued descriptor (e.g. SURF-like float vectors).
type Real []float32

// Descriptor is the set of supported descriptor families.
type Descriptor interface {
	Binary | Real
}

// Metric represents the native distance of a descriptor family.
type Metric int

const (
	MetricHamming Metric = iota
	MetricL2
)

func (m Metric) String() string {
	switch m {
	case MetricHamming:
		return "Hamming"
	case MetricL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// MetricOf returns the native metric of the descriptor family D.
func MetricOf[D Descriptor]() Metric {
	var zero D
	if _, ok := any(zero).(Binary); ok {
		return MetricHamming
	}
	return MetricL2
}

// Distance returns the native distance between two descriptors of the same
// family: Hamming for Binary, Euclidean for Real.
// Assumes descriptors are the same length (caller's responsibility).
func Distance[D Descriptor](a, b D) float64 {
	switch x := any(a).(type) {
	case Binary:
		return float64(Hamming(x, any(b).(Binary)))
	case Real:
		return L2(x, any(b).(Real))
	default:
		panic("unreachable")
	}
}

// Hamming counts the differing bits of two binary descriptors.
func Hamming(a, b Binary) int {
	var sum int
	n := min(len(a), len(b))
	i := 0
	for ; i+8 <= n; i += 8 {
		v1 := binary.LittleEndian.Uint64(a[i:])
		v2 := binary.LittleEndian.Uint64(b[i:])
		sum += bits.OnesCount64(v1 ^ v2)
	}
	for ; i < n; i++ {
		sum += bits.OnesCount8(a[i] ^ b[i])
	}
	return sum
}

// L2 returns the Euclidean distance between two real descriptors.
func L2(a, b Real) float64 {
	var sum float64
	for i := range min(len(a), len(b)) {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Bit reports whether bit i of the descriptor is set.
func (d Binary) Bit(i int) bool {
	return d[i>>3]&(1<<(i&7)) != 0
}

// SetBit sets bit i of the descriptor.
func (d Binary) SetBit(i int) {
	d[i>>3] |= 1 << (i & 7)
}

// Key returns a string form of the descriptor usable as a map key.
func Key[D Descriptor](d D) string {
	switch x := any(d).(type) {
	case Binary:
		return string(x)
	case Real:
		buf := make([]byte, 4*len(x))
		for i, v := range x {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		return string(buf)
	default:
		panic("unreachable")
	}
}
