// Package review implements the document review lifecycle: the
// canonical status vocabulary, normalization of legacy status values,
// the transition guard, and per-reviewer decision aggregation. The
// package is pure; persistence and authorization live in the service
// layer.
package review

// Status is the canonical lifecycle status of a reviewable entity.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusReviewRequest Status = "review_request"
	StatusNeedsUpdate   Status = "needs_update"
	StatusApproved      Status = "approved"
)

// Statuses returns the canonical status set in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusReviewRequest, StatusNeedsUpdate, StatusApproved}
}

// Valid reports whether s is one of the four canonical values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReviewRequest, StatusNeedsUpdate, StatusApproved:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
