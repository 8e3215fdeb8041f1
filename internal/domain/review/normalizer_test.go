package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_LegacyMapping(t *testing.T) {
	n := NewNormalizer(nil)

	cases := map[string]Status{
		"pending":           StatusDraft,
		"changes_requested": StatusNeedsUpdate,
		"commented":         StatusReviewRequest,
		"approved":          StatusApproved,
	}

	for raw, want := range cases {
		got, err := n.Normalize(raw)
		require.NoError(t, err, "legacy value %q", raw)
		assert.Equal(t, want, got)
	}
}

func TestNormalizer_CanonicalPassthrough(t *testing.T) {
	n := NewNormalizer(nil)

	for _, s := range Statuses() {
		got, err := n.Normalize(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestNormalizer_UnknownStatus(t *testing.T) {
	n := NewNormalizer(nil)

	for _, raw := range []string{"", "   ", "published", "DRAFT", "in_review"} {
		_, err := n.Normalize(raw)
		require.Error(t, err, "value %q", raw)

		var unknownErr *UnknownStatusError
		require.True(t, errors.As(err, &unknownErr))
		assert.Equal(t, raw, unknownErr.Value)
	}
}

func TestNormalizer_CustomTableIsCopied(t *testing.T) {
	table := map[string]Status{"wip": StatusDraft}
	n := NewNormalizer(table)

	// Mutating the caller's map must not affect the normalizer.
	table["wip"] = StatusApproved
	delete(table, "wip")

	got, err := n.Normalize("wip")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got)

	// The custom table replaces the default one entirely.
	_, err = n.Normalize("pending")
	assert.Error(t, err)
}

func TestNormalizer_TrimsWhitespace(t *testing.T) {
	n := NewNormalizer(nil)

	got, err := n.Normalize("  draft ")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got)
}
