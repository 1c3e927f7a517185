package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-sync/core/storage"

	mapset "github.com/deckarep/golang-set/v2"
)

// MetadataLookup fetches remote metadata for an object name. It must fail
// with storage.ErrNotFound when the object does not exist.
type MetadataLookup func(ctx context.Context, name string) (*storage.ObjectInfo, error)

// Decide classifies one local file against its remote counterpart:
//
//   - remote missing: Create
//   - remote has a last-modified time strictly later than the local
//     modification time: Skip (the remote copy is treated as newer)
//   - otherwise, including a remote without a timestamp: Update
//
// Times are compared at whole-second resolution, so a sub-second difference
// is a tie and ties upload.
func Decide(ctx context.Context, entry LocalFileEntry, lookup MetadataLookup) (Decision, error) {
	info, err := lookup(ctx, entry.Name)
	if errors.Is(err, storage.ErrNotFound) {
		return Decision{Action: ActionCreate, Name: entry.Name, Reason: ReasonMissingRemotely}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if info.LastModified != "" {
		remote, err := storage.ParseWireTime(info.LastModified)
		if err != nil {
			return Decision{}, fmt.Errorf("bad last-modified %q on %s: %w", info.LastModified, entry.Name, err)
		}
		if entry.ModTime.Truncate(time.Second).Before(remote) {
			return Decision{Action: ActionSkip, Name: entry.Name, Reason: ReasonUpToDate}, nil
		}
	}

	return Decision{Action: ActionUpdate, Name: entry.Name, Reason: ReasonStaleRemotely}, nil
}

// DeleteCandidates returns the remote names that are not in the local set, in
// the order given. The local set must be complete: every file of the run's walk
// has to be in it before this is called.
func DeleteCandidates(remote []string, local mapset.Set[string]) []Decision {
	var out []Decision
	for _, name := range remote {
		if !local.Contains(name) {
			out = append(out, Decision{Action: ActionDelete, Name: name, Reason: ReasonAbsentLocally})
		}
	}
	return out
}
