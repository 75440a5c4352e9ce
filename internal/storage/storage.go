// Package storage abstracts the S3-compatible object store the lake data
// path lives on.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ContentTypeParquet is the content type stamped on uploaded parquet payloads.
const ContentTypeParquet = "application/x-parquet"

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type PutOptions struct {
	ContentType string
}

type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	// PutParquet uploads a parquet payload under folder/object, trimming
	// surrounding slashes from the folder. An empty folder stores the
	// object at the bucket root.
	PutParquet(ctx context.Context, folder, object string, payload []byte) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List returns the objects under folder whose keys end with ext, or
	// all objects under folder when ext is empty. Returned keys are
	// relative to the store's configured prefix and can be passed back to
	// Get, Stat and Delete unchanged.
	List(ctx context.Context, folder, ext string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}
