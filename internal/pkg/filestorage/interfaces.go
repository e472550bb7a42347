package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key resolves to no stored blob.
var ErrNotFound = errors.New("file not found")

// ErrUploadNotAuthorized is returned by Put when the key was not issued by
// PresignUpload, was already consumed, or its grant has expired.
var ErrUploadNotAuthorized = errors.New("upload not authorized for key")

// UploadMeta describes a blob a client wants to upload directly.
type UploadMeta struct {
	KeyPrefix   string
	Filename    string
	ContentType string
}

// Storage is the blob storage capability. One implementation is chosen at
// startup from configuration; callers never branch on key shape.
type Storage interface {
	// Save persists a blob and returns its opaque retrieval key.
	Save(ctx context.Context, data []byte, contentType, keyPrefix string) (string, error)
	// PresignUpload returns a write target the client can PUT bytes to, and
	// the key the blob will be retrievable under afterwards.
	PresignUpload(ctx context.Context, meta UploadMeta) (uploadURL, key string, err error)
	// PresignDownload returns a URL granting read access to the blob.
	PresignDownload(ctx context.Context, key string) (string, error)
	// Open returns a reader over the stored blob. The caller closes it.
	Open(key string) (io.ReadCloser, error)
	// Put writes raw bytes under a key previously issued by PresignUpload.
	// Grants are single-use: a second Put under the same key fails with
	// ErrUploadNotAuthorized, as does any key that was never issued.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes a blob. Missing blobs are not an error.
	Delete(ctx context.Context, key string) error
}
