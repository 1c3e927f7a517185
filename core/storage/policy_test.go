package storage_test

import (
	"encoding/json"
	"testing"

	"asset-sync/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessPolicy_Document(t *testing.T) {
	t.Run("PublicBlob", func(t *testing.T) {
		doc, err := storage.AccessPublicBlob.Document("static")
		require.NoError(t, err)

		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
		statements := parsed["Statement"].([]any)
		require.Len(t, statements, 1)

		stmt := statements[0].(map[string]any)
		assert.Equal(t, "Allow", stmt["Effect"])
		assert.Equal(t, []any{"s3:GetObject"}, stmt["Action"])
		assert.Equal(t, []any{"arn:aws:s3:::static/*"}, stmt["Resource"])
	})

	t.Run("Private", func(t *testing.T) {
		doc, err := storage.AccessPrivate.Document("static")
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := storage.AccessPolicy("container").Document("static")
		assert.Error(t, err)
	})
}
