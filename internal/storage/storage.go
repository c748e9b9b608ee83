package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound indicates the referenced object does not exist in the backend.
var ErrNotFound = errors.New("object not found")

// ObjectRef identifies a single immutable object in a bucket.
type ObjectRef struct {
	Bucket string
	Key    string
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// Store is the capability the downloader needs from a blob backend: total
// object size and ranged reads. Credential and region resolution belong to
// the implementation.
type Store interface {
	// Head returns the total size of the object in bytes. A missing object
	// yields ErrNotFound; anything else is a backend failure.
	Head(ctx context.Context, ref ObjectRef) (int64, error)
	// GetRange streams bytes [start, end) of the object. The caller closes
	// the returned reader.
	GetRange(ctx context.Context, ref ObjectRef, start, end int64) (io.ReadCloser, error)
}

// ParseRef accepts "s3://bucket/key" or "bucket/key".
func ParseRef(url string) (ObjectRef, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ObjectRef{}, fmt.Errorf("invalid S3 URL format")
	}
	return ObjectRef{Bucket: parts[0], Key: parts[1]}, nil
}
