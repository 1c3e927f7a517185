package objects

import (
	"asset-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Objects feature serving containers.
func NewFeature(store storage.ObjectStore, containers []string, logger *zap.Logger) *Feature {
	svc := NewService(store, containers, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "objects"
}

// IsEnabled reports whether any container is served.
func (f *Feature) IsEnabled() bool {
	return f.service.containers.Cardinality() > 0
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
