package network

// State is the connectivity state seen by the scanning session.
type State int32

const (
	Online State = iota
	Offline
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}
