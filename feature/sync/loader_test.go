package sync

import (
	"testing"

	"asset-sync/core/storage/memstore"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	feature := NewFeature(memstore.New(), testConfig(), afero.NewMemMapFs(), zap.NewNop())

	assert.Equal(t, "sync", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}
