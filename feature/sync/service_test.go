package sync

import (
	"context"
	"testing"
	"time"

	"asset-sync/core/storage/memstore"
	"asset-sync/core/syncer"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	fileTime   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	uploadTime = fileTime.Add(time.Hour)
)

func testConfig() syncer.Config {
	return syncer.Config{
		MediaRoot:       "/media",
		MediaContainer:  "media",
		StaticRoot:      "/static",
		StaticContainer: "static",
		Workers:         1,
	}
}

func setupService(t *testing.T, files ...string) (*Service, *memstore.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(name), 0o644))
		require.NoError(t, fs.Chtimes(name, fileTime, fileTime))
	}
	store := memstore.New(memstore.WithClock(func() time.Time { return uploadTime }))
	return NewService(store, testConfig(), fs, zap.NewNop()), store
}

func TestService_Targets(t *testing.T) {
	svc, _ := setupService(t)

	targets := svc.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, syncer.TargetMedia, targets[0].Name)
	assert.False(t, targets[0].Purge)
	assert.Equal(t, syncer.TargetStatic, targets[1].Name)
	assert.True(t, targets[1].Purge)
}

func TestService_Run(t *testing.T) {
	svc, store := setupService(t, "/static/app.css", "/static/app.js")

	report, err := svc.Run(context.Background(), Request{Target: syncer.TargetStatic, Verbosity: 1})
	require.NoError(t, err)

	assert.Equal(t, "Skipped 0. Created 2. Updated 0. Deleted 0.", report.Summary)
	assert.Equal(t, []string{"Skipped 0. Created 2. Updated 0. Deleted 0."}, report.Output)
	assert.False(t, report.Shared)
	assert.Empty(t, report.Result.Decisions)
	assert.Equal(t, []string{"app.css", "app.js"}, store.Names("static"))
}

func TestService_RunVerbose(t *testing.T) {
	svc, _ := setupService(t, "/media/a.png")

	report, err := svc.Run(context.Background(), Request{Target: syncer.TargetMedia, TestRun: true, Verbosity: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Uploaded a.png",
		"Test run complete with the following results:",
		"Skipped 0. Created 1. Updated 0. Deleted 0.",
	}, report.Output)
	require.Len(t, report.Result.Decisions, 1)
	assert.True(t, report.Result.DryRun)
}

func TestService_RunContainerOverride(t *testing.T) {
	svc, store := setupService(t, "/media/a.png")

	report, err := svc.Run(context.Background(), Request{Target: syncer.TargetMedia, Container: "media-staging"})
	require.NoError(t, err)

	assert.Equal(t, "media-staging", report.Result.Target.Container)
	assert.Equal(t, []string{"a.png"}, store.Names("media-staging"))
	assert.Empty(t, store.Names("media"))
}

func TestService_RunUnknownTarget(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Run(context.Background(), Request{Target: "themes"})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestService_RunFailureKeepsPartialReport(t *testing.T) {
	svc, _ := setupService(t)

	report, err := svc.Run(context.Background(), Request{Target: syncer.TargetStatic})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "Skipped 0. Created 0. Updated 0. Deleted 0.", report.Summary)
}

func TestService_ConcurrentRunsUploadOnce(t *testing.T) {
	svc, store := setupService(t, "/static/a.txt", "/static/b.txt")

	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			_, err := svc.Run(context.Background(), Request{Target: syncer.TargetStatic, Verbosity: 1})
			return err
		})
	}
	require.NoError(t, g.Wait())

	puts := 0
	for _, c := range store.Calls() {
		if c.Op == memstore.OpPut {
			puts++
		}
	}
	assert.Equal(t, 2, puts)
	assert.Equal(t, []string{"a.txt", "b.txt"}, store.Names("static"))
}
