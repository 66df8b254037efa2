package waitlist

// SubmissionState tracks one submission through validate, check and persist.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateValidating
	StateChecking
	StatePersisting
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateChecking:
		return "checking"
	case StatePersisting:
		return "persisting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s SubmissionState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Outcome labels for the submissions counter.
const (
	OutcomeJoined       = "joined"
	OutcomeInvalidEmail = "invalid_email"
	OutcomeDuplicate    = "duplicate"
	OutcomeStorageError = "storage_error"
)
