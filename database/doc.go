// Package database implements the bag-of-words image database: an inverted
// file from visual words to the frames that contain them.
//
// Posting lists are roaring bitmaps. A query unions the postings of its
// words, removes frames newer than the caller's limit with a single range
// operation and scores the survivors against the stored vectors:
//
//	db := database.NewMemory()
//	_ = db.Add(ctx, 0, vec0)
//	results, _ := db.Query(ctx, vec, 50, current-window)
//
// A Memory database can be snapshotted to any blobstore.Store and loaded
// back for offline inspection and querying. Snapshots are checksummed with
// CRC32C and compressed with LZ4 (default) or ZSTD. A loopgo.Detector
// numbers frames from 0 and refuses a database that already holds frames.
package database
