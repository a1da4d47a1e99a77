// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("loopgo/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	err = db.Save(ctx, store, "db/snapshot.bin")
//
// Reads use ranged GETs. Writes go through the multipart upload manager
// and carry CRC32C checksums.
package s3
