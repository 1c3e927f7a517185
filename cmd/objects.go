package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"asset-sync/core/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// objectsCmd groups the file-storage commands.
var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Inspect and manage stored objects",
}

var objectsLsCmd = &cobra.Command{
	Use:   "ls <container> [path]",
	Short: "List files below a path",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		return withFiles(args[0], func(ctx context.Context, files *storage.Files) error {
			_, names, err := files.ListDir(ctx, path)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		})
	},
}

var objectsStatCmd = &cobra.Command{
	Use:   "stat <container> <name>",
	Short: "Show size, type and modification time of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFiles(args[0], func(ctx context.Context, files *storage.Files) error {
			return printStat(ctx, cmd.OutOrStdout(), files, args[1])
		})
	},
}

// printStat writes the metadata of name, fetched with a single stat call.
func printStat(ctx context.Context, out io.Writer, files *storage.Files, name string) error {
	info, err := files.Stat(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s/%s: %w", files.Container(), name, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Name:     %s\n", info.Name)
	fmt.Fprintf(out, "Size:     %s (%d bytes)\n", humanize.Bytes(uint64(info.ContentLength)), info.ContentLength)
	fmt.Fprintf(out, "Type:     %s\n", info.ContentType)
	if info.LastModified == "" {
		fmt.Fprintln(out, "Modified: unknown")
		return nil
	}
	modified, err := storage.ParseWireTime(info.LastModified)
	if err != nil {
		return fmt.Errorf("bad last-modified on %s: %w", name, err)
	}
	fmt.Fprintf(out, "Modified: %s (%s)\n", info.LastModified, humanize.Time(modified))
	return nil
}

var objectsRmCmd = &cobra.Command{
	Use:   "rm <container> <name>...",
	Short: "Delete files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFiles(args[0], func(ctx context.Context, files *storage.Files) error {
			for _, name := range args[1:] {
				if err := files.Delete(ctx, name); err != nil {
					return fmt.Errorf("failed to delete %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			}
			return nil
		})
	},
}

func init() {
	objectsCmd.AddCommand(objectsLsCmd, objectsStatCmd, objectsRmCmd)
	RootCmd.AddCommand(objectsCmd)
}

// withFiles opens the file storage of container and runs fn on it.
func withFiles(container string, fn func(ctx context.Context, files *storage.Files) error) error {
	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	store, err := newObjectStore(cfg, l)
	if err != nil {
		return err
	}

	ctx := context.Background()
	files, err := storage.NewFiles(ctx, store, container)
	if err != nil {
		return err
	}
	return fn(ctx, files)
}
