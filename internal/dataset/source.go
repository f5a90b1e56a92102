package dataset

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
)

// FileSource opens dataset files relative to a directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p := name
	if !filepath.IsAbs(p) && s.Dir != "" {
		p = filepath.Join(s.Dir, name)
	}
	return os.Open(p)
}

// ObjectGetter reads an object from a bucket.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// S3Source opens dataset objects by key, optionally under a prefix.
type S3Source struct {
	Client ObjectGetter
	Prefix string
}

func (s S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, path.Join(s.Prefix, name))
}
