package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Files is a file-storage view of a single container: names map to objects,
// and the usual file operations map to object calls.
type Files struct {
	store     ObjectStore
	container string
}

// NewFiles returns the file storage backed by container, creating the container
// with public-read-blob access if it does not exist yet.
func NewFiles(ctx context.Context, store ObjectStore, container string) (*Files, error) {
	exists, err := store.ContainerExists(ctx, container)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := store.CreateContainer(ctx, container, AccessPublicBlob); err != nil {
			return nil, err
		}
	}
	return &Files{store: store, container: container}, nil
}

// Container returns the backing container name.
func (f *Files) Container() string {
	return f.container
}

// Open returns a reader over the named object.
func (f *Files) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f.store.GetObject(ctx, f.container, name)
}

// Save writes content under name and returns the stored name. An empty
// contentType is inferred from the name.
func (f *Files) Save(ctx context.Context, name string, content io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content for %s: %w", name, err)
	}

	opts := ContentHeaders(name, data)
	if contentType != "" {
		opts.ContentType = contentType
	}
	if err := f.store.PutObject(ctx, f.container, name, data, opts); err != nil {
		return "", err
	}
	return name, nil
}

// ListDir lists the objects under path. Object storage has no directories, so
// dirs is always empty and files holds every object below path (recursively),
// relative to it.
func (f *Files) ListDir(ctx context.Context, path string) (dirs []string, files []string, err error) {
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	names, err := f.store.ListObjects(ctx, f.container, path)
	if err != nil {
		return nil, nil, err
	}

	dirs = []string{}
	files = make([]string, 0, len(names))
	for _, name := range names {
		files = append(files, strings.TrimPrefix(name, path))
	}
	return dirs, files, nil
}

// Exists reports whether name is present.
func (f *Files) Exists(ctx context.Context, name string) (bool, error) {
	_, err := f.store.GetObjectMetadata(ctx, f.container, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes name. Deleting a missing file succeeds.
func (f *Files) Delete(ctx context.Context, name string) error {
	return f.store.DeleteObject(ctx, f.container, name)
}

// Stat returns the object's metadata.
func (f *Files) Stat(ctx context.Context, name string) (*ObjectInfo, error) {
	return f.store.GetObjectMetadata(ctx, f.container, name)
}

// Size returns the size of name in bytes.
func (f *Files) Size(ctx context.Context, name string) (int64, error) {
	info, err := f.Stat(ctx, name)
	if err != nil {
		return 0, err
	}
	return info.ContentLength, nil
}

// ModifiedTime returns the last-modified time of name in UTC. A store that
// reports no timestamp yields the zero time.
func (f *Files) ModifiedTime(ctx context.Context, name string) (time.Time, error) {
	info, err := f.Stat(ctx, name)
	if err != nil {
		return time.Time{}, err
	}
	if info.LastModified == "" {
		return time.Time{}, nil
	}
	return ParseWireTime(info.LastModified)
}
