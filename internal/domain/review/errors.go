package review

import "fmt"

// UnknownStatusError reports a status string that is neither canonical
// nor in the legacy vocabulary. It is a client error at whatever
// boundary the value arrived on.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown review status %q", e.Value)
}

// InvalidTransitionError reports a requested edge that is not in the
// state graph.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid review transition %s -> %s", e.From, e.To)
}

// ValidationError reports an invalid review request or decision
// submission, such as a blank mandatory comment or a stale revision.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "review validation failed: " + e.Reason
}
