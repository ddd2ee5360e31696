package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Archive keeps raw completions for later diagnosis
type Archive interface {
	// Put returns a writer that saves an object under key
	Put(ctx context.Context, key string) (io.WriteCloser, error)
}

// storageArchive implements Archive using Cloud Storage
type storageArchive struct {
	bucketName string
	prefix     string
	client     *storage.Client
}

type ArchiveOption func(*storageArchive)

// WithArchivePrefix prepends prefix to every object key
func WithArchivePrefix(prefix string) ArchiveOption {
	return func(s *storageArchive) {
		s.prefix = prefix
	}
}

// NewStorageArchive creates an Archive backed by a Cloud Storage bucket
func NewStorageArchive(ctx context.Context, bucketName string, opts ...ArchiveOption) (Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	s := &storageArchive{
		bucketName: bucketName,
		client:     client,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *storageArchive) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(s.prefix + key)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	return w, nil
}
