// Package memstore is an in-memory storage.ObjectStore. It backs the sync
// engine's tests and records every mutating call so callers can assert on
// them.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"asset-sync/core/storage"
)

// Op names a store operation.
type Op string

const (
	OpCreateContainer Op = "create_container"
	OpSetPolicy       Op = "set_policy"
	OpPut             Op = "put"
	OpDelete          Op = "delete"
	OpStat            Op = "stat"
	OpList            Op = "list"
)

// Call is a recorded mutating call.
type Call struct {
	Op        Op
	Container string
	Name      string
}

type object struct {
	data     []byte
	modified time.Time
	opts     storage.PutOptions
}

type container struct {
	policy  storage.AccessPolicy
	objects map[string]*object
}

// Store is a goroutine-safe in-memory object store.
type Store struct {
	mu         sync.Mutex
	containers map[string]*container
	calls      []Call
	failures   map[Op]map[string]error
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp uploads.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		containers: make(map[string]*container),
		failures:   make(map[Op]map[string]error),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed stores an object directly, creating its container if needed. A zero
// modified time makes the object report no last-modified timestamp.
// Seeding is not recorded as a call.
func (s *Store) Seed(containerName, name string, data []byte, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensure(containerName)
	c.objects[name] = &object{data: data, modified: modified}
}

// FailOn makes op fail with err for name (or for every name when name is "").
// For OpList the name is the container.
func (s *Store) FailOn(op Op, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[op] == nil {
		s.failures[op] = make(map[string]error)
	}
	s.failures[op][name] = err
}

// Calls returns the recorded mutating calls in order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Names returns the sorted object names in containerName.
func (s *Store) Names(containerName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[containerName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(c.objects))
	for name := range c.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Object returns a stored object's data and headers.
func (s *Store) Object(containerName, name string) ([]byte, storage.PutOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[containerName]
	if !ok {
		return nil, storage.PutOptions{}, false
	}
	obj, ok := c.objects[name]
	if !ok {
		return nil, storage.PutOptions{}, false
	}
	return obj.data, obj.opts, true
}

// Policy returns the access policy of containerName.
func (s *Store) Policy(containerName string) (storage.AccessPolicy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[containerName]
	if !ok {
		return "", false
	}
	return c.policy, true
}

func (s *Store) ContainerExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.containers[name]
	return ok, nil
}

func (s *Store) CreateContainer(ctx context.Context, name string, policy storage.AccessPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpCreateContainer, name); err != nil {
		return err
	}
	s.record(OpCreateContainer, name, "")
	s.ensure(name).policy = policy
	return nil
}

func (s *Store) SetContainerAccessPolicy(ctx context.Context, name string, policy storage.AccessPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpSetPolicy, name); err != nil {
		return err
	}
	c, ok := s.containers[name]
	if !ok {
		return fmt.Errorf("container %s: %w", name, storage.ErrNotFound)
	}
	s.record(OpSetPolicy, name, "")
	c.policy = policy
	return nil
}

func (s *Store) ListObjects(ctx context.Context, containerName, prefix string) ([]string, error) {
	if err := s.checkFailure(OpList, containerName); err != nil {
		return nil, err
	}
	var names []string
	for _, name := range s.Names(containerName) {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Store) GetObjectMetadata(ctx context.Context, containerName, name string) (*storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpStat, name); err != nil {
		return nil, err
	}
	obj, err := s.lookup(containerName, name)
	if err != nil {
		return nil, err
	}
	info := &storage.ObjectInfo{
		Name:          name,
		ContentLength: int64(len(obj.data)),
		ContentType:   obj.opts.ContentType,
	}
	if !obj.modified.IsZero() {
		info.LastModified = storage.FormatWireTime(obj.modified)
	}
	return info, nil
}

func (s *Store) GetObject(ctx context.Context, containerName, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(containerName, name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Store) PutObject(ctx context.Context, containerName, name string, data []byte, opts storage.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpPut, name); err != nil {
		return err
	}
	c, ok := s.containers[containerName]
	if !ok {
		return fmt.Errorf("container %s: %w", containerName, storage.ErrNotFound)
	}
	s.record(OpPut, containerName, name)
	c.objects[name] = &object{
		data:     append([]byte(nil), data...),
		modified: s.now(),
		opts:     opts,
	}
	return nil
}

func (s *Store) DeleteObject(ctx context.Context, containerName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpDelete, name); err != nil {
		return err
	}
	s.record(OpDelete, containerName, name)
	if c, ok := s.containers[containerName]; ok {
		delete(c.objects, name)
	}
	return nil
}

func (s *Store) ensure(name string) *container {
	c, ok := s.containers[name]
	if !ok {
		c = &container{policy: storage.AccessPrivate, objects: make(map[string]*object)}
		s.containers[name] = c
	}
	return c
}

func (s *Store) lookup(containerName, name string) (*object, error) {
	c, ok := s.containers[containerName]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", containerName, name, storage.ErrNotFound)
	}
	obj, ok := c.objects[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", containerName, name, storage.ErrNotFound)
	}
	return obj, nil
}

func (s *Store) record(op Op, containerName, name string) {
	s.calls = append(s.calls, Call{Op: op, Container: containerName, Name: name})
}

// failure must be called with mu held.
func (s *Store) failure(op Op, name string) error {
	byName := s.failures[op]
	if byName == nil {
		return nil
	}
	if err, ok := byName[name]; ok {
		return err
	}
	return byName[""]
}

func (s *Store) checkFailure(op Op, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure(op, name)
}

var _ storage.ObjectStore = (*Store)(nil)
