package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an object (or its container) does not exist.
var ErrNotFound = errors.New("storage: object not found")

// ObjectInfo is a read-only snapshot of a remote object's metadata.
type ObjectInfo struct {
	// Name is the object name within its container.
	Name string `json:"name"`
	// LastModified is the wire timestamp (see WireTimeLayout). Empty when the store did not report one.
	LastModified string `json:"last_modified,omitempty"`
	// ContentLength is the object size in bytes.
	ContentLength int64 `json:"content_length"`
	// ContentType is the stored MIME type.
	ContentType string `json:"content_type,omitempty"`
}

// PutOptions carries the headers stored with an uploaded object.
type PutOptions struct {
	ContentType     string
	ContentEncoding string
}

// ObjectStore is the remote object-storage capability consumed by the synchronizer
// and the file-storage facade.
type ObjectStore interface {
	ContainerExists(ctx context.Context, name string) (bool, error)
	CreateContainer(ctx context.Context, name string, policy AccessPolicy) error
	SetContainerAccessPolicy(ctx context.Context, name string, policy AccessPolicy) error
	// ListObjects returns the names of all objects under prefix, in lexical order.
	ListObjects(ctx context.Context, container, prefix string) ([]string, error)
	// GetObjectMetadata fails with ErrNotFound when the object does not exist.
	GetObjectMetadata(ctx context.Context, container, name string) (*ObjectInfo, error)
	GetObject(ctx context.Context, container, name string) (io.ReadCloser, error)
	PutObject(ctx context.Context, container, name string, data []byte, opts PutOptions) error
	// DeleteObject succeeds when the object is already absent.
	DeleteObject(ctx context.Context, container, name string) error
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithRetryInterval sets the initial backoff interval between retries.
func WithRetryInterval(d time.Duration) StoreOption {
	return func(s *Store) { s.retryInterval = d }
}

// Store implements ObjectStore on top of an S3-compatible Client.
type Store struct {
	client        Client
	region        string
	maxRetries    int
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewStore wraps client into an ObjectStore.
func NewStore(client Client, cfg Config, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		client:        client,
		region:        cfg.Region,
		maxRetries:    cfg.MaxRetries,
		retryInterval: 200 * time.Millisecond,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContainerExists reports whether the bucket exists.
func (s *Store) ContainerExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.retry(ctx, "container_exists", func() error {
		var err error
		exists, err = s.client.BucketExists(ctx, name)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to check container %s: %w", name, err)
	}
	return exists, nil
}

// CreateContainer creates the bucket and applies policy to it.
func (s *Store) CreateContainer(ctx context.Context, name string, policy AccessPolicy) error {
	err := s.retry(ctx, "create_container", func() error {
		return s.client.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: s.region})
	})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		// Losing a creation race to another writer still leaves us with the container.
		if resp.Code != "BucketAlreadyOwnedByYou" && resp.Code != "BucketAlreadyExists" {
			return fmt.Errorf("failed to create container %s: %w", name, err)
		}
	}
	return s.SetContainerAccessPolicy(ctx, name, policy)
}

// SetContainerAccessPolicy replaces the bucket policy with the one implementing policy.
func (s *Store) SetContainerAccessPolicy(ctx context.Context, name string, policy AccessPolicy) error {
	doc, err := policy.Document(name)
	if err != nil {
		return err
	}
	err = s.retry(ctx, "set_policy", func() error {
		return s.client.SetBucketPolicy(ctx, name, doc)
	})
	if err != nil {
		return fmt.Errorf("failed to set access policy on %s: %w", name, err)
	}
	return nil
}

// ListObjects lists every object under prefix recursively.
func (s *Store) ListObjects(ctx context.Context, container, prefix string) ([]string, error) {
	var names []string
	err := s.retry(ctx, "list_objects", func() error {
		names = names[:0]
		opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
		for obj := range s.client.ListObjects(ctx, container, opts) {
			if obj.Err != nil {
				return obj.Err
			}
			names = append(names, obj.Key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects in %s: %w", container, err)
	}
	return names, nil
}

// GetObjectMetadata stats a single object.
func (s *Store) GetObjectMetadata(ctx context.Context, container, name string) (*ObjectInfo, error) {
	var info minio.ObjectInfo
	err := s.retry(ctx, "stat_object", func() error {
		var err error
		info, err = s.client.StatObject(ctx, container, name, minio.StatObjectOptions{})
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s/%s: %w", container, name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s/%s: %w", container, name, err)
	}

	meta := &ObjectInfo{
		Name:          name,
		ContentLength: info.Size,
		ContentType:   info.ContentType,
	}
	if !info.LastModified.IsZero() {
		meta.LastModified = FormatWireTime(info.LastModified)
	}
	return meta, nil
}

// GetObject opens an object for reading. Missing objects fail with ErrNotFound up front.
func (s *Store) GetObject(ctx context.Context, container, name string) (io.ReadCloser, error) {
	if _, err := s.GetObjectMetadata(ctx, container, name); err != nil {
		return nil, err
	}
	var rc io.ReadCloser
	err := s.retry(ctx, "get_object", func() error {
		var err error
		rc, err = s.client.GetObject(ctx, container, name, minio.GetObjectOptions{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", container, name, err)
	}
	return rc, nil
}

// PutObject uploads data as a single whole-object write.
func (s *Store) PutObject(ctx context.Context, container, name string, data []byte, opts PutOptions) error {
	err := s.retry(ctx, "put_object", func() error {
		_, err := s.client.PutObject(ctx, container, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType:     opts.ContentType,
			ContentEncoding: opts.ContentEncoding,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", container, name, err)
	}
	return nil
}

// DeleteObject removes an object; a missing object is not an error.
func (s *Store) DeleteObject(ctx context.Context, container, name string) error {
	err := s.retry(ctx, "delete_object", func() error {
		return s.client.RemoveObject(ctx, container, name, minio.RemoveObjectOptions{})
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", container, name, err)
	}
	return nil
}

// retry runs fn with bounded exponential backoff. Only transient errors are retried.
func (s *Store) retry(ctx context.Context, op string, fn func() error) error {
	if s.maxRetries <= 0 {
		return fn()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.retryInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.maxRetries)), ctx)

	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		s.logger.Warn("Transient storage error, retrying",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}
