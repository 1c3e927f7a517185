package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asset-sync/core/storage"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupReturning(info *storage.ObjectInfo, err error) MetadataLookup {
	return func(ctx context.Context, name string) (*storage.ObjectInfo, error) {
		return info, err
	}
}

func TestDecide(t *testing.T) {
	local := time.Date(2024, 3, 10, 12, 0, 0, 500_000_000, time.UTC)
	entry := LocalFileEntry{Name: "css/app.css", ModTime: local}

	tests := []struct {
		name       string
		info       *storage.ObjectInfo
		err        error
		wantAction Action
		wantReason string
	}{
		{
			name:       "missing remotely",
			err:        fmt.Errorf("wrapped: %w", storage.ErrNotFound),
			wantAction: ActionCreate,
			wantReason: ReasonMissingRemotely,
		},
		{
			name:       "remote newer",
			info:       &storage.ObjectInfo{LastModified: storage.FormatWireTime(local.Add(time.Minute))},
			wantAction: ActionSkip,
			wantReason: ReasonUpToDate,
		},
		{
			name:       "remote older",
			info:       &storage.ObjectInfo{LastModified: storage.FormatWireTime(local.Add(-time.Minute))},
			wantAction: ActionUpdate,
			wantReason: ReasonStaleRemotely,
		},
		{
			name:       "same second uploads",
			info:       &storage.ObjectInfo{LastModified: storage.FormatWireTime(local)},
			wantAction: ActionUpdate,
			wantReason: ReasonStaleRemotely,
		},
		{
			name:       "no remote timestamp",
			info:       &storage.ObjectInfo{},
			wantAction: ActionUpdate,
			wantReason: ReasonStaleRemotely,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decide(context.Background(), entry, lookupReturning(tt.info, tt.err))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, "css/app.css", d.Name)
		})
	}
}

func TestDecide_Errors(t *testing.T) {
	entry := LocalFileEntry{Name: "a.txt", ModTime: time.Now()}

	t.Run("LookupFailure", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := Decide(context.Background(), entry, lookupReturning(nil, boom))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("UnparseableTimestamp", func(t *testing.T) {
		_, err := Decide(context.Background(), entry, lookupReturning(&storage.ObjectInfo{LastModified: "yesterday"}, nil))
		assert.ErrorContains(t, err, "bad last-modified")
	})
}

func TestDeleteCandidates(t *testing.T) {
	local := mapset.NewSet("b", "d")
	got := DeleteCandidates([]string{"a", "b", "c"}, local)

	require.Len(t, got, 2)
	assert.Equal(t, Decision{Action: ActionDelete, Name: "a", Reason: ReasonAbsentLocally}, got[0])
	assert.Equal(t, "c", got[1].Name)

	assert.Empty(t, DeleteCandidates([]string{"b"}, local))
	assert.Empty(t, DeleteCandidates(nil, local))
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Record(Decision{Action: ActionCreate}, 10)
	tally.Record(Decision{Action: ActionUpdate}, 5)
	tally.Record(Decision{Action: ActionUpdate}, 5)
	tally.Record(Decision{Action: ActionSkip}, 100)
	tally.Record(Decision{Action: ActionDelete}, 0)

	assert.Equal(t, Tally{Created: 1, Uploaded: 3, Updated: 2, Skipped: 1, Deleted: 1, Bytes: 20}, tally)
	assert.True(t, tally.Consistent())

	tally.Uploaded++
	assert.False(t, tally.Consistent())
}
