package core

// FrameID is the dense, monotonic index assigned to each processed frame in
// arrival order. It is strictly 32-bit so frame sets fit roaring bitmaps.
type FrameID uint32

// MaxFrameID is the maximum possible value for a FrameID.
const MaxFrameID = ^FrameID(0)

// WordID identifies a visual word (a leaf of the vocabulary).
type WordID uint32

// NodeID identifies a vocabulary node. At level 0 a node is a word; higher
// levels group words under a common ancestor.
type NodeID uint32
