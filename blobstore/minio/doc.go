// Package minio provides a blobstore.Store backed by MinIO or any other
// S3-compatible object store (Ceph, SeaweedFS, Garage).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "loopgo", "snapshots/")
//	err = db.Save(ctx, store, "office.snap")
package minio
