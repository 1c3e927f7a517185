package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	gosync "sync"

	"asset-sync/core/storage"
	"asset-sync/core/syncer"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownTarget is returned for a target name that is not configured.
var ErrUnknownTarget = errors.New("unknown sync target")

// Request describes one sync run triggered through the API.
type Request struct {
	Target    string
	TestRun   bool
	Wipe      bool
	Container string
	Verbosity int
}

func (r Request) key(container string) string {
	return fmt.Sprintf("%s|%s|%t|%t|%d", r.Target, container, r.TestRun, r.Wipe, r.Verbosity)
}

// Report is the outcome of a sync run as returned to API callers.
type Report struct {
	Result  *syncer.Result `json:"result"`
	Summary string         `json:"summary"`
	Output  []string       `json:"output"`
	// Shared is set when the caller joined a run that was already in flight.
	Shared bool `json:"shared"`
}

// Service runs sync targets on demand. Identical concurrent requests share a
// single run, and runs that write to the same container never overlap.
type Service struct {
	store   storage.ObjectStore
	cfg     syncer.Config
	targets map[string]syncer.Target
	fs      afero.Fs
	logger  *zap.Logger

	flights singleflight.Group
	mu      gosync.Mutex
	writers map[string]*gosync.Mutex
}

// NewService creates a new sync service.
func NewService(store storage.ObjectStore, cfg syncer.Config, fs afero.Fs, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		cfg:     cfg,
		targets: syncer.Targets(cfg),
		fs:      fs,
		logger:  logger,
		writers: make(map[string]*gosync.Mutex),
	}
}

// Targets returns the configured targets sorted by name.
func (s *Service) Targets() []syncer.Target {
	out := make([]syncer.Target, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run performs the requested sync. On failure the partial report is returned
// with the error.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	target, ok := s.targets[req.Target]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, req.Target)
	}
	target = target.WithContainer(req.Container)

	v, err, shared := s.flights.Do(req.key(target.Container), func() (any, error) {
		if !req.TestRun {
			lock := s.writer(target.Container)
			lock.Lock()
			defer lock.Unlock()
		}
		return s.run(ctx, target, req)
	})

	report, _ := v.(*Report)
	if report != nil && shared {
		cp := *report
		cp.Shared = true
		report = &cp
	}
	return report, err
}

func (s *Service) run(ctx context.Context, target syncer.Target, req Request) (*Report, error) {
	var out bytes.Buffer
	sy := syncer.New(s.store, target,
		syncer.WithDryRun(req.TestRun),
		syncer.WithWipe(req.Wipe),
		syncer.WithVerbosity(req.Verbosity),
		syncer.WithWorkers(s.cfg.Workers),
		syncer.WithExclude(s.cfg.Exclude),
		syncer.WithFs(s.fs),
		syncer.WithOutput(&out),
		syncer.WithLogger(s.logger),
		syncer.WithDecisions(req.Verbosity > 1),
	)

	res, err := sy.Run(ctx)
	report := &Report{
		Result:  res,
		Summary: syncer.Summary(res.Tally),
		Output:  lines(out.String()),
	}
	return report, err
}

// writer returns the lock serialising mutating runs against container.
func (s *Service) writer(container string) *gosync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.writers[container]
	if !ok {
		m = &gosync.Mutex{}
		s.writers[container] = m
	}
	return m
}

func lines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
