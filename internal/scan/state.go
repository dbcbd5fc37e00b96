package scan

// State is a controller state.
type State int

const (
	Idle State = iota
	Scanned
	Resolving
	Resolved
	AwaitingBundleMode
	Ready
	Submitting
	Success
	QueuedOffline
	BundleModeRequired
	Rejected
	ConflictBlocked
	Error
)

var stateNames = map[State]string{
	Idle:               "idle",
	Scanned:            "scanned",
	Resolving:          "resolving",
	Resolved:           "resolved",
	AwaitingBundleMode: "awaiting_bundle_mode",
	Ready:              "ready",
	Submitting:         "submitting",
	Success:            "success",
	QueuedOffline:      "queued_offline",
	BundleModeRequired: "bundle_mode_required",
	Rejected:           "rejected",
	ConflictBlocked:    "conflict_blocked",
	Error:              "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// StatusKind tells the presentation layer how to style the status line.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusWarning StatusKind = "warning"
	StatusError   StatusKind = "error"
)

// Status line texts shared with the CLI and tests.
const (
	MsgWorkingOffline   = "working offline"
	MsgQueuedOffline    = "added to offline queue"
	MsgTagNotLinked     = "tag not linked to an item or bundle"
	MsgProjectNumeric   = "project id must be numeric"
	MsgChooseBundleMode = "choose a bundle mode"
	MsgRecorded         = "movement recorded"
	MsgResolveFailed    = "could not resolve tag"
	MsgSubmitFailed     = "Could not record movement."
	MsgConflictFallback = "Movement conflicts with an existing booking."
)
