package syncer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"asset-sync/core/logger"
	"asset-sync/core/storage"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option configures a Syncer.
type Option func(*Syncer)

// WithDryRun makes the run compute and report every decision without
// mutating the remote store.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) { s.dryRun = dryRun }
}

// WithWipe deletes every object in the container before uploading.
func WithWipe(wipe bool) Option {
	return func(s *Syncer) { s.wipe = wipe }
}

// WithVerbosity sets the output level. Above 1, one line is printed per file.
func WithVerbosity(v int) Option {
	return func(s *Syncer) { s.verbosity = v }
}

// WithWorkers sets how many files are diffed and uploaded concurrently.
func WithWorkers(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithExclude sets glob patterns of local paths to leave out.
func WithExclude(patterns []string) Option {
	return func(s *Syncer) { s.exclude = patterns }
}

// WithFs sets the filesystem the target root is read from.
func WithFs(fsys afero.Fs) Option {
	return func(s *Syncer) { s.fs = fsys }
}

// WithOutput sets where the summary and per-file lines are written.
func WithOutput(w io.Writer) Option {
	return func(s *Syncer) { s.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// WithDecisions keeps every decision in the Result.
func WithDecisions(keep bool) Option {
	return func(s *Syncer) { s.keepDecisions = keep }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Syncer) { s.runID = id }
}

// Syncer uploads one local tree into one remote container.
// A Syncer is good for a single Run.
type Syncer struct {
	store  storage.ObjectStore
	target Target

	fs            afero.Fs
	out           io.Writer
	logger        *zap.Logger
	dryRun        bool
	wipe          bool
	verbosity     int
	workers       int
	exclude       []string
	keepDecisions bool
	runID         string

	// containerMissing is set in a test run against a container that does
	// not exist yet; the remote side is then treated as empty.
	containerMissing bool

	mu     sync.Mutex
	result *Result
}

// New returns a Syncer for target backed by store.
func New(store storage.ObjectStore, target Target, opts ...Option) *Syncer {
	s := &Syncer{
		store:     store,
		target:    target,
		fs:        afero.NewOsFs(),
		out:       io.Discard,
		logger:    zap.NewNop(),
		verbosity: 1,
		workers:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.logger = logger.WithRunID(s.logger, s.runID, target.Name)
	return s
}

// Run performs the sync: make sure the container exists, optionally wipe it,
// walk the local tree uploading new and stale files, optionally delete remote
// objects with no local counterpart, then print the summary.
//
// On failure the partial Result is returned together with the error. Nothing
// is rolled back; running again converges.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	s.result = &Result{
		RunID:         s.runID,
		Target:        s.target,
		DryRun:        s.dryRun,
		WipeRequested: s.wipe,
	}
	defer func() { s.result.Duration = time.Since(start) }()

	s.logger.Info("Sync started",
		zap.String("root", s.target.Root),
		zap.String("container", s.target.Container),
		zap.Bool("test_run", s.dryRun),
		zap.Bool("wipe", s.wipe),
		zap.Int("workers", s.workers))

	if err := s.run(ctx); err != nil {
		s.logger.Error("Sync failed", zap.Error(err), zap.Any("tally", s.result.Tally))
		WritePartialSummary(s.out, s.result)
		return s.result, err
	}

	if !s.result.Tally.Consistent() {
		return s.result, fmt.Errorf("inconsistent tally: %+v", s.result.Tally)
	}

	WriteSummary(s.out, s.result)

	s.logger.Info("Sync complete",
		zap.Int("skipped", s.result.Tally.Skipped),
		zap.Int("created", s.result.Tally.Created),
		zap.Int("updated", s.result.Tally.Updated),
		zap.Int("deleted", s.result.Tally.Deleted),
		zap.String("uploaded", humanize.Bytes(uint64(s.result.Tally.Bytes))),
		zap.Duration("elapsed", time.Since(start)))
	return s.result, nil
}

func (s *Syncer) run(ctx context.Context) error {
	if err := s.ensureContainer(ctx); err != nil {
		return err
	}

	if s.wipe {
		if err := s.wipeContainer(ctx); err != nil {
			return err
		}
	}

	local, err := s.syncTree(ctx)
	if err != nil {
		return err
	}

	if s.target.Purge {
		return s.deleteMissing(ctx, local)
	}
	return nil
}

// ensureContainer creates the container with public-read access when absent,
// or resets an existing container's policy to public-read. A test run only
// checks existence.
func (s *Syncer) ensureContainer(ctx context.Context) error {
	name := s.target.Container
	exists, err := s.store.ContainerExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check container %s: %w", name, err)
	}

	if s.dryRun {
		s.containerMissing = !exists
		if !exists {
			s.logger.Info("Container does not exist, test run treats it as empty", zap.String("container", name))
		}
		return nil
	}

	if !exists {
		s.logger.Info("Creating container", zap.String("container", name))
		// CreateContainer applies the policy itself.
		if err := s.store.CreateContainer(ctx, name, storage.AccessPublicBlob); err != nil {
			return fmt.Errorf("failed to create container %s: %w", name, err)
		}
		return nil
	}
	if err := s.store.SetContainerAccessPolicy(ctx, name, storage.AccessPublicBlob); err != nil {
		return fmt.Errorf("failed to set access policy on %s: %w", name, err)
	}
	return nil
}

func (s *Syncer) wipeContainer(ctx context.Context) error {
	var names []string
	if !s.containerMissing {
		var err error
		names, err = s.store.ListObjects(ctx, s.target.Container, "")
		if err != nil {
			return fmt.Errorf("failed to list %s for wipe: %w", s.target.Container, err)
		}
	}

	if s.dryRun {
		s.result.Wiped = len(names)
		fmt.Fprintf(s.out, "Wipe would delete %d objects.\n", len(names))
		return nil
	}

	fmt.Fprintf(s.out, "Deleting %d objects...\n", len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.store.DeleteObject(ctx, s.target.Container, name); err != nil {
			return fmt.Errorf("failed to wipe %s: %w", name, err)
		}
		s.result.Wiped++
		s.result.Tally.Record(Decision{Action: ActionDelete, Name: name, Reason: ReasonWiped}, 0)
		if s.keepDecisions {
			s.result.Decisions = append(s.result.Decisions, Decision{Action: ActionDelete, Name: name, Reason: ReasonWiped})
		}
	}
	return nil
}

// syncTree walks the target root and syncs each file. It returns the set of
// local object names once every per-file operation has finished.
func (s *Syncer) syncTree(ctx context.Context) (mapset.Set[string], error) {
	local := mapset.NewThreadUnsafeSet[string]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var walkErr error
	for entry, err := range Walk(s.fs, s.target.Root, s.target.Prefix, s.exclude) {
		if err != nil {
			walkErr = err
			break
		}
		if gctx.Err() != nil {
			break
		}
		local.Add(entry.Name)
		g.Go(func() error {
			return s.syncFile(gctx, entry)
		})
	}

	// Barrier: the delete pass must see the complete local name set.
	if err := g.Wait(); err != nil {
		return local, err
	}
	if walkErr != nil {
		return local, walkErr
	}
	return local, ctx.Err()
}

func (s *Syncer) syncFile(ctx context.Context, entry LocalFileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d, err := Decide(ctx, entry, s.lookup)
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", entry.Name, err)
	}

	if d.Uploads() && !s.dryRun {
		data, err := afero.ReadFile(s.fs, entry.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Path, err)
		}
		if err := s.store.PutObject(ctx, s.target.Container, entry.Name, data, storage.ContentHeaders(entry.Name, data)); err != nil {
			return fmt.Errorf("failed to upload %s: %w", entry.Name, err)
		}
	}

	s.record(d, entry.Size)
	return nil
}

func (s *Syncer) lookup(ctx context.Context, name string) (*storage.ObjectInfo, error) {
	if s.containerMissing {
		return nil, storage.ErrNotFound
	}
	return s.store.GetObjectMetadata(ctx, s.target.Container, name)
}

func (s *Syncer) deleteMissing(ctx context.Context, local mapset.Set[string]) error {
	if s.containerMissing {
		return nil
	}

	remote, err := s.store.ListObjects(ctx, s.target.Container, "")
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", s.target.Container, err)
	}

	for _, d := range DeleteCandidates(remote, local) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.dryRun {
			if err := s.store.DeleteObject(ctx, s.target.Container, d.Name); err != nil {
				return fmt.Errorf("failed to delete %s: %w", d.Name, err)
			}
		}
		s.record(d, 0)
	}
	return nil
}

// record tallies d and prints its per-file line. Safe for concurrent use.
func (s *Syncer) record(d Decision, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result.Tally.Record(d, size)
	if s.keepDecisions {
		s.result.Decisions = append(s.result.Decisions, d)
	}
	if s.verbosity > 1 {
		WriteDecision(s.out, d)
	}
	s.logger.Debug("Decided",
		zap.String("object", d.Name),
		zap.String("action", string(d.Action)),
		zap.String("reason", d.Reason))
}
