// Package blobstore provides storage abstraction for persisted index snapshots.
//
// BlobStore is the interface for reading and writing immutable data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-process map, for tests and ephemeral indexes
//   - LocalStore: Local filesystem with mmap support
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can expose their content without copying implement Mappable.
package blobstore
