// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.NewStoreFromConfig(ctx, "my-bucket", "snapshots/")
//	if err != nil {
//	    return err
//	}
//	err = idx.Save(ctx, store, "cities.zsp")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
