package port

import (
	"context"
	"io"
)

// Object metadata written alongside an archived report XML.
const (
	MetadataDigest       = "digest"
	MetadataOriginalName = "original-name"
)

// UploadInput encapsulates the parameters needed to upload an object.
// Metadata is stored as user metadata on the object (see MetadataDigest).
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the archive for uploaded report XML. Download
// returns domain.ErrSourceUnavailable when the object is gone.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
