// Package feature defines the keypoint/descriptor contract consumed by the
// loop detector and the building blocks shared by the extractor variants.
//
// An Extractor turns a grayscale image into an ordered sequence of keypoints
// and a matching sequence of descriptors (one per keypoint, same index).
// Variants live in sub-packages:
//
//   - feature/brief: FAST corners + BRIEF descriptors from a sampling-pattern resource
//   - feature/orb:   FAST corners + orientation + steered BRIEF descriptors
//
// # Descriptor Families
//
//   - Binary: packed bit strings compared with the Hamming distance
//   - Real:   float32 vectors compared with the Euclidean distance
//
// Both satisfy the Descriptor constraint, so every downstream component
// (vocabulary, matcher, detector) is generic over the family chosen at
// construction time.
package feature
