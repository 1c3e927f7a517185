package objects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"asset-sync/core/storage"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// ErrUnknownContainer is returned for containers that are not served.
var ErrUnknownContainer = errors.New("unknown container")

// Service hands out file storages for the served containers.
type Service struct {
	store      storage.ObjectStore
	containers mapset.Set[string]
	logger     *zap.Logger

	mu    sync.Mutex
	files map[string]*storage.Files
}

// NewService creates a new objects service serving containers.
func NewService(store storage.ObjectStore, containers []string, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		containers: mapset.NewSet(containers...),
		logger:     logger,
		files:      make(map[string]*storage.Files),
	}
}

// Containers returns the served container names, sorted.
func (s *Service) Containers() []string {
	names := s.containers.ToSlice()
	sort.Strings(names)
	return names
}

// Files returns the file storage of container. The container is created on
// first use when missing.
func (s *Service) Files(ctx context.Context, container string) (*storage.Files, error) {
	if !s.containers.Contains(container) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, container)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[container]; ok {
		return f, nil
	}

	f, err := storage.NewFiles(ctx, s.store, container)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", container, err)
	}
	s.files[container] = f
	s.logger.Debug("Opened container", zap.String("container", container))
	return f, nil
}
