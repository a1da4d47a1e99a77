// Package blobstore provides the storage abstraction for loopgo resources:
// database snapshots and extractor sampling patterns.
//
// Store is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem; reads are memory-mapped where supported
//   - minio.Store: MinIO and other S3-compatible object stores
//   - s3.Store: Amazon S3 with range reads and managed uploads
//
// # Reading Whole Blobs
//
// Snapshots and patterns are consumed whole:
//
//	data, err := blobstore.ReadAll(ctx, store, "db/snapshot.bin")
package blobstore
