package syncer

import (
	"io/fs"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under fsys and stamps them with their modification time.
func writeTree(t *testing.T, fsys afero.Fs, files map[string]time.Time) {
	t.Helper()
	for path, mtime := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte("content of "+path), 0o644))
		require.NoError(t, fsys.Chtimes(path, mtime, mtime))
	}
}

// lockedFs refuses to open one path.
type lockedFs struct {
	afero.Fs
	path string
}

func (l *lockedFs) Open(name string) (afero.File, error) {
	if name == l.path {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return l.Fs.Open(name)
}

func collect(t *testing.T, fsys afero.Fs, root, prefix string, exclude []string) ([]LocalFileEntry, error) {
	t.Helper()
	var entries []LocalFileEntry
	for entry, err := range Walk(fsys, root, prefix, exclude) {
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func names(entries []LocalFileEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestWalk(t *testing.T) {
	mtime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]time.Time{
		"/site/static/index.html":      mtime,
		"/site/static/css/app.css":     mtime.Add(time.Hour),
		"/site/static/js/vendor/x.js":  mtime,
		"/site/static/img/logo.png":    mtime,
		"/site/static/.cache/state":    mtime,
		"/site/static/js/vendor/x.map": mtime,
	})
	require.NoError(t, fsys.MkdirAll("/site/static/empty", 0o755))

	t.Run("AllFiles", func(t *testing.T) {
		entries, err := collect(t, fsys, "/site/static", "", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			".cache/state",
			"css/app.css",
			"img/logo.png",
			"index.html",
			"js/vendor/x.js",
			"js/vendor/x.map",
		}, names(entries))
	})

	t.Run("EntryFields", func(t *testing.T) {
		entries, err := collect(t, fsys, "/site/static", "", nil)
		require.NoError(t, err)
		var css LocalFileEntry
		for _, e := range entries {
			if e.Name == "css/app.css" {
				css = e
			}
		}
		assert.Equal(t, "/site/static/css/app.css", css.Path)
		assert.True(t, css.ModTime.Equal(mtime.Add(time.Hour)))
		assert.Equal(t, time.UTC, css.ModTime.Location())
		assert.Equal(t, int64(len("content of /site/static/css/app.css")), css.Size)
	})

	t.Run("Prefix", func(t *testing.T) {
		entries, err := collect(t, fsys, "/site/static", "/assets/", []string{"**/*.map", ".cache/**", "img/**", "js/**"})
		require.NoError(t, err)
		assert.Equal(t, []string{"assets/css/app.css", "assets/index.html"}, names(entries))
	})

	t.Run("Exclude", func(t *testing.T) {
		entries, err := collect(t, fsys, "/site/static", "", []string{"**/*.map", ".cache/**"})
		require.NoError(t, err)
		assert.Equal(t, []string{"css/app.css", "img/logo.png", "index.html", "js/vendor/x.js"}, names(entries))
	})

	t.Run("InvalidPattern", func(t *testing.T) {
		_, err := collect(t, fsys, "/site/static", "", []string{"[unclosed"})
		assert.ErrorContains(t, err, "invalid exclude pattern")
	})

	t.Run("MissingRoot", func(t *testing.T) {
		_, err := collect(t, fsys, "/site/missing", "", nil)
		assert.ErrorContains(t, err, "failed to read root")
	})

	t.Run("RootIsFile", func(t *testing.T) {
		_, err := collect(t, fsys, "/site/static/index.html", "", nil)
		assert.ErrorContains(t, err, "not a directory")
	})

	t.Run("UnreadableDirectory", func(t *testing.T) {
		locked := &lockedFs{Fs: fsys, path: "/site/static/js"}
		entries, err := collect(t, locked, "/site/static", "", nil)
		require.ErrorIs(t, err, fs.ErrPermission)
		assert.ErrorContains(t, err, "failed to read /site/static/js")
		assert.NotContains(t, names(entries), "js/vendor/x.js")
	})

	t.Run("EarlyStop", func(t *testing.T) {
		count := 0
		for _, err := range Walk(fsys, "/site/static", "", nil) {
			require.NoError(t, err)
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix, rel, want string
	}{
		{"", "a/b.txt", "a/b.txt"},
		{"static/", "a.txt", "static/a.txt"},
		{"/static/", "a.txt", "static/a.txt"},
		{"//x/", "a.txt", "x/a.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectName(tt.prefix, tt.rel))
	}
}
