package review

// transitions is the full edge set of the review state machine.
//
//	draft --request_review--> review_request
//	review_request --(all approve)--> approved
//	review_request --(any reject)--> needs_update
//	needs_update --(author edits)--> draft
//	approved --(author edits)--> draft
var transitions = map[Status][]Status{
	StatusDraft:         {StatusReviewRequest},
	StatusReviewRequest: {StatusNeedsUpdate, StatusApproved},
	StatusNeedsUpdate:   {StatusDraft},
	StatusApproved:      {StatusDraft},
}

// ValidateTransition checks that from -> to is an edge of the state
// machine. A no-op transition (from == to) is not an edge.
func ValidateTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// ApplyEdit returns the status an entity takes after a
// content-modifying save. Edits in draft keep the entity in draft;
// edits in needs_update or approved reopen it as draft and restart the
// review cycle. Editing while a review is in flight is rejected.
func ApplyEdit(current Status) (Status, error) {
	switch current {
	case StatusDraft:
		return StatusDraft, nil
	case StatusNeedsUpdate, StatusApproved:
		if err := ValidateTransition(current, StatusDraft); err != nil {
			return "", err
		}
		return StatusDraft, nil
	default:
		return "", &InvalidTransitionError{From: current, To: StatusDraft}
	}
}

// Decision is one reviewer's state for the active review cycle.
// Approved is nil until the reviewer submits.
type Decision struct {
	Submitted bool
	Approved  *bool
}

// Aggregate derives the entity status from the reviewer decisions of
// the current revision. The first submitted rejection wins regardless
// of the other reviewers; approval requires every assigned reviewer to
// have submitted an approval. With reviewers still pending the entity
// stays in review_request. An empty reviewer set also stays in
// review_request: there is nobody to approve it.
func Aggregate(decisions []Decision) Status {
	if len(decisions) == 0 {
		return StatusReviewRequest
	}
	allApproved := true
	for _, d := range decisions {
		if d.Submitted && d.Approved != nil && !*d.Approved {
			return StatusNeedsUpdate
		}
		if !d.Submitted || d.Approved == nil || !*d.Approved {
			allApproved = false
		}
	}
	if allApproved {
		return StatusApproved
	}
	return StatusReviewRequest
}
