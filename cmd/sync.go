package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"asset-sync/core/syncer"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by the sync subcommands
	syncWipe      bool
	syncTestRun   bool
	syncContainer string
	syncVerbosity int
	syncWorkers   int
	syncExclude   []string
)

// syncCmd is the parent command of the sync targets.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync a local tree to object storage",
	Long: `Upload local files whose remote copy is missing or not newer than the
local one. Static assets are also pruned: remote objects with no local file are
deleted.

Examples:
  # Upload collected static files and prune the rest
  asset-sync sync static

  # See what a full re-upload of media would do
  asset-sync sync media --wipe --test-run

  # Sync into a staging container, listing every file
  asset-sync sync static -c static-staging -v 2`,
}

var syncMediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Sync user media (never prunes)",
	Args:  cobra.NoArgs,
	RunE:  runSync(syncer.TargetMedia),
}

var syncStaticCmd = &cobra.Command{
	Use:   "static",
	Short: "Sync collected static files and prune remote leftovers",
	Args:  cobra.NoArgs,
	RunE:  runSync(syncer.TargetStatic),
}

func init() {
	flags := syncCmd.PersistentFlags()
	flags.BoolVarP(&syncWipe, "wipe", "w", false, "Wipes out entire contents of container first")
	flags.BoolVarP(&syncTestRun, "test-run", "t", false, "Performs a test run of the sync without mutating storage")
	flags.StringVarP(&syncContainer, "container", "c", "", "Override the target container")
	flags.IntVarP(&syncVerbosity, "verbosity", "v", 1, "Output level 0-3; above 1 prints a line per file")
	flags.IntVar(&syncWorkers, "workers", 0, "Concurrent uploads (default from SYNC_WORKERS)")
	flags.StringSliceVar(&syncExclude, "exclude", nil, "Glob of local paths to skip, repeatable (adds to SYNC_EXCLUDE)")

	syncCmd.AddCommand(syncMediaCmd, syncStaticCmd)
	RootCmd.AddCommand(syncCmd)
}

func runSync(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()

		store, err := newObjectStore(cfg, l)
		if err != nil {
			return err
		}

		target, ok := syncer.Targets(cfg.Sync)[name]
		if !ok {
			return fmt.Errorf("unknown sync target %q", name)
		}
		target = target.WithContainer(syncContainer)

		workers := cfg.Sync.Workers
		if syncWorkers > 0 {
			workers = syncWorkers
		}
		exclude := append(append([]string{}, cfg.Sync.Exclude...), syncExclude...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = syncer.New(store, target,
			syncer.WithDryRun(syncTestRun),
			syncer.WithWipe(syncWipe),
			syncer.WithVerbosity(syncVerbosity),
			syncer.WithWorkers(workers),
			syncer.WithExclude(exclude),
			syncer.WithFs(afero.NewOsFs()),
			syncer.WithOutput(cmd.OutOrStdout()),
			syncer.WithLogger(l),
		).Run(ctx)
		return err
	}
}
