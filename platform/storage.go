package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidObjectPath = errors.New("invalid object path")

// Object describes a stored blob.
type Object struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
}

// Bucket is a directory-backed blob bucket whose objects are publicly served
// under <publicBaseURL>/storage/v1/object/public/<name>/<path>.
type Bucket struct {
	name          string
	root          string
	publicBaseURL string
}

func NewBucket(storageDir, name, publicBaseURL string) (*Bucket, error) {
	root := filepath.Join(storageDir, name)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory %s: %w", root, err)
	}
	return &Bucket{
		name:          name,
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Root() string { return b.root }

// PublicPrefix is the URL path the bucket is served under.
func (b *Bucket) PublicPrefix() string {
	return "/storage/v1/object/public/" + b.name
}

// Upload writes r to objectPath. Existing objects are never overwritten.
func (b *Bucket) Upload(ctx context.Context, objectPath string, r io.Reader) (*Object, error) {
	full, err := b.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create object %s: %w", objectPath, err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(full)
		return nil, fmt.Errorf("failed to write object %s: %w", objectPath, errors.Join(copyErr, closeErr))
	}

	return &Object{Bucket: b.name, Path: objectPath, Size: n}, nil
}

// PublicURL returns the unauthenticated link for objectPath.
func (b *Bucket) PublicURL(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.publicBaseURL + b.PublicPrefix() + "/" + strings.Join(segments, "/")
}

func (b *Bucket) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if objectPath == "" || clean == "/" || clean != "/"+objectPath {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectPath, objectPath)
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}
