package syncer

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

var errStopWalk = errors.New("walk stopped")

// Walk lazily enumerates every regular file under root. Directories are
// descended, never yielded. Each entry's Name is prefix + the path relative to
// root with forward slashes. Files whose relative path matches one of the
// exclude patterns are left out.
//
// A missing or unreadable root, or any unreadable entry below it, is yielded
// as an error and ends the sequence.
func Walk(fsys afero.Fs, root, prefix string, exclude []string) iter.Seq2[LocalFileEntry, error] {
	return func(yield func(LocalFileEntry, error) bool) {
		for _, pattern := range exclude {
			if !doublestar.ValidatePattern(pattern) {
				yield(LocalFileEntry{}, fmt.Errorf("invalid exclude pattern %q", pattern))
				return
			}
		}

		info, err := fsys.Stat(root)
		if err != nil {
			yield(LocalFileEntry{}, fmt.Errorf("failed to read root %s: %w", root, err))
			return
		}
		if !info.IsDir() {
			yield(LocalFileEntry{}, fmt.Errorf("root %s is not a directory", root))
			return
		}

		err = afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if info.Mode()&os.ModeSymlink != 0 {
				if info, err = fsys.Stat(path); err != nil {
					return fmt.Errorf("failed to follow link %s: %w", path, err)
				}
			}
			if info.IsDir() || !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path for %s: %w", path, err)
			}
			rel = filepath.ToSlash(rel)

			if excluded(rel, exclude) {
				return nil
			}

			entry := LocalFileEntry{
				Name:    ObjectName(prefix, rel),
				Path:    path,
				ModTime: info.ModTime().UTC(),
				Size:    info.Size(),
			}
			if !yield(entry, nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield(LocalFileEntry{}, err)
		}
	}
}

// ObjectName joins a naming prefix and a slash-separated relative path.
// Leading slashes of the prefix are dropped, so "/static/" and "static/" name
// the same objects.
func ObjectName(prefix, rel string) string {
	return strings.TrimLeft(prefix, "/") + rel
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
