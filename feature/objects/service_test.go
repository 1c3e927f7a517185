package objects

import (
	"context"
	"testing"

	"asset-sync/core/storage"
	"asset-sync/core/storage/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_Files(t *testing.T) {
	store := memstore.New()
	svc := NewService(store, []string{"media"}, zap.NewNop())

	f, err := svc.Files(context.Background(), "media")
	require.NoError(t, err)
	assert.Equal(t, "media", f.Container())

	again, err := svc.Files(context.Background(), "media")
	require.NoError(t, err)
	assert.Same(t, f, again)

	policy, ok := store.Policy("media")
	require.True(t, ok)
	assert.Equal(t, storage.AccessPublicBlob, policy)
	assert.Len(t, store.Calls(), 1)

	_, err = svc.Files(context.Background(), "other")
	assert.ErrorIs(t, err, ErrUnknownContainer)
}

func TestLoader(t *testing.T) {
	feature := NewFeature(memstore.New(), []string{"static"}, zap.NewNop())
	assert.Equal(t, "objects", feature.Name())
	assert.True(t, feature.IsEnabled())

	assert.False(t, NewFeature(memstore.New(), nil, zap.NewNop()).IsEnabled())
}
