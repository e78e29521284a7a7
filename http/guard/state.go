package guard

// A State is where a single mount of a protected view stands.
type State int

const (
	Pending State = iota
	Granted
	Denied
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}
