package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestValidateTransition_AllowedEdges(t *testing.T) {
	allowed := [][2]Status{
		{StatusDraft, StatusReviewRequest},
		{StatusReviewRequest, StatusNeedsUpdate},
		{StatusReviewRequest, StatusApproved},
		{StatusNeedsUpdate, StatusDraft},
		{StatusApproved, StatusDraft},
	}

	for _, edge := range allowed {
		assert.NoError(t, ValidateTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestValidateTransition_RejectsEverythingElse(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusDraft, StatusReviewRequest}:       true,
		{StatusReviewRequest, StatusNeedsUpdate}: true,
		{StatusReviewRequest, StatusApproved}:    true,
		{StatusNeedsUpdate, StatusDraft}:         true,
		{StatusApproved, StatusDraft}:            true,
	}

	for _, from := range Statuses() {
		for _, to := range Statuses() {
			if allowed[[2]Status{from, to}] {
				continue
			}
			err := ValidateTransition(from, to)
			require.Error(t, err, "%s -> %s must be rejected", from, to)

			var transitionErr *InvalidTransitionError
			require.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, from, transitionErr.From)
			assert.Equal(t, to, transitionErr.To)
		}
	}
}

func TestValidateTransition_NoDraftToApprovedShortcut(t *testing.T) {
	// A document cannot be approved without passing through review.
	err := ValidateTransition(StatusDraft, StatusApproved)
	assert.Error(t, err)
}

func TestApplyEdit(t *testing.T) {
	tests := []struct {
		current Status
		want    Status
		wantErr bool
	}{
		{StatusDraft, StatusDraft, false},
		{StatusNeedsUpdate, StatusDraft, false},
		{StatusApproved, StatusDraft, false},
		{StatusReviewRequest, "", true},
	}

	for _, tt := range tests {
		got, err := ApplyEdit(tt.current)
		if tt.wantErr {
			var transitionErr *InvalidTransitionError
			require.Error(t, err, "edit in %s", tt.current)
			assert.True(t, errors.As(err, &transitionErr))
			continue
		}
		require.NoError(t, err, "edit in %s", tt.current)
		assert.Equal(t, tt.want, got)
	}
}

func TestAggregate_AllApproved(t *testing.T) {
	decisions := []Decision{
		{Submitted: true, Approved: boolPtr(true)},
		{Submitted: true, Approved: boolPtr(true)},
		{Submitted: true, Approved: boolPtr(true)},
	}
	assert.Equal(t, StatusApproved, Aggregate(decisions))
}

func TestAggregate_AnyRejectionWins(t *testing.T) {
	// Rejection is authoritative regardless of position or the other
	// reviewers' states.
	for i := 0; i < 3; i++ {
		decisions := []Decision{
			{Submitted: true, Approved: boolPtr(true)},
			{Submitted: false},
			{Submitted: true, Approved: boolPtr(true)},
		}
		decisions[i] = Decision{Submitted: true, Approved: boolPtr(false)}
		assert.Equal(t, StatusNeedsUpdate, Aggregate(decisions), "rejection at index %d", i)
	}
}

func TestAggregate_PendingReviewersKeepReviewRequest(t *testing.T) {
	decisions := []Decision{
		{Submitted: true, Approved: boolPtr(true)},
		{Submitted: false},
	}
	assert.Equal(t, StatusReviewRequest, Aggregate(decisions))
}

func TestAggregate_EmptyReviewerSet(t *testing.T) {
	assert.Equal(t, StatusReviewRequest, Aggregate(nil))
	assert.Equal(t, StatusReviewRequest, Aggregate([]Decision{}))
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []Decision{
		{Submitted: true, Approved: boolPtr(false)},
		{Submitted: true, Approved: boolPtr(true)},
	}
	b := []Decision{
		{Submitted: true, Approved: boolPtr(true)},
		{Submitted: true, Approved: boolPtr(false)},
	}
	assert.Equal(t, Aggregate(a), Aggregate(b))
	assert.Equal(t, StatusNeedsUpdate, Aggregate(a))
}
