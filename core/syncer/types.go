package syncer

import "time"

// LocalFileEntry is a regular file found under a target root.
type LocalFileEntry struct {
	// Name is the remote object name: prefix + slash-separated relative path.
	Name string
	// Path is the absolute (or root-joined) local path.
	Path string
	// ModTime is the local modification time in UTC.
	ModTime time.Time
	// Size is the file size in bytes.
	Size int64
}

// Action is the outcome of diffing one object.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
	ActionDelete Action = "delete"
)

// Reasons attached to decisions.
const (
	ReasonMissingRemotely = "missing remotely"
	ReasonStaleRemotely   = "stale remotely"
	ReasonUpToDate        = "up to date"
	ReasonAbsentLocally   = "absent locally"
	ReasonWiped           = "wiped"
)

// Decision is what the diff engine concluded for one object.
type Decision struct {
	Action Action `json:"action"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Uploads reports whether the decision writes the object.
func (d Decision) Uploads() bool {
	return d.Action == ActionCreate || d.Action == ActionUpdate
}

// Tally counts the outcomes of one run.
type Tally struct {
	Created  int `json:"created"`
	Uploaded int `json:"uploaded"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
	// Bytes is the total size of uploaded (or, in a test run, would-be uploaded) files.
	Bytes int64 `json:"bytes"`
}

// Record adds one decision to the tally.
func (t *Tally) Record(d Decision, size int64) {
	switch d.Action {
	case ActionCreate:
		t.Created++
		t.Uploaded++
		t.Bytes += size
	case ActionUpdate:
		t.Updated++
		t.Uploaded++
		t.Bytes += size
	case ActionSkip:
		t.Skipped++
	case ActionDelete:
		t.Deleted++
	}
}

// Consistent cross-checks the tagged counters: every upload is either a
// create or an update.
func (t Tally) Consistent() bool {
	return t.Updated == t.Uploaded-t.Created
}

// Result is the outcome of a sync run. It is returned even when the run
// fails part-way, holding whatever was tallied until then.
type Result struct {
	RunID  string `json:"run_id"`
	Target Target `json:"target"`
	DryRun bool   `json:"dry_run"`
	// Wiped is the number of objects the wipe step deleted, or would delete in a test run.
	Wiped int `json:"wiped"`
	// WipeRequested is set when the run included the wipe step.
	WipeRequested bool          `json:"wipe_requested"`
	Tally         Tally         `json:"tally"`
	Decisions     []Decision    `json:"decisions,omitempty"`
	Duration      time.Duration `json:"duration"`
}
