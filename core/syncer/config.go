package syncer

// Config holds the settings of the two sync targets.
type Config struct {
	// MediaRoot is the local directory of user-uploaded media.
	MediaRoot string `mapstructure:"media_root" default:"media"`
	// MediaPrefix is prepended to every media object name.
	MediaPrefix string `mapstructure:"media_prefix" default:""`
	// MediaContainer is the container media is synced to.
	MediaContainer string `mapstructure:"media_container" default:"media"`
	// StaticRoot is the local directory of collected static assets.
	StaticRoot string `mapstructure:"static_root" default:"static"`
	// StaticPrefix is prepended to every static object name.
	StaticPrefix string `mapstructure:"static_prefix" default:""`
	// StaticContainer is the container static assets are synced to.
	StaticContainer string `mapstructure:"static_container" default:"static"`
	// Workers is the number of concurrent per-file uploads. 1 runs sequentially.
	Workers int `mapstructure:"workers" default:"1"`
	// Exclude lists glob patterns (doublestar syntax) of local paths never synced.
	Exclude []string `mapstructure:"exclude" default:""`
}

// Target names the local tree and the container one sync run works on.
type Target struct {
	// Name identifies the target in logs and the API ("media", "static").
	Name string `json:"name"`
	// Root is the local directory to walk.
	Root string `json:"root"`
	// Prefix is prepended to the slash-separated relative path to form object names.
	Prefix string `json:"prefix"`
	// Container is the remote container to sync into.
	Container string `json:"container"`
	// Purge deletes remote objects with no local counterpart.
	Purge bool `json:"purge"`
}

const (
	TargetMedia  = "media"
	TargetStatic = "static"
)

// MediaTarget syncs user media. Remote media is never pruned.
func MediaTarget(cfg Config) Target {
	return Target{
		Name:      TargetMedia,
		Root:      cfg.MediaRoot,
		Prefix:    cfg.MediaPrefix,
		Container: cfg.MediaContainer,
		Purge:     false,
	}
}

// StaticTarget syncs collected static assets and prunes stale remote files.
func StaticTarget(cfg Config) Target {
	return Target{
		Name:      TargetStatic,
		Root:      cfg.StaticRoot,
		Prefix:    cfg.StaticPrefix,
		Container: cfg.StaticContainer,
		Purge:     true,
	}
}

// Targets returns every configured target keyed by name.
func Targets(cfg Config) map[string]Target {
	return map[string]Target{
		TargetMedia:  MediaTarget(cfg),
		TargetStatic: StaticTarget(cfg),
	}
}

// WithContainer returns a copy of t syncing into container instead.
// An empty container leaves t unchanged.
func (t Target) WithContainer(container string) Target {
	if container != "" {
		t.Container = container
	}
	return t
}
