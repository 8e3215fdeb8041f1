package review

import "strings"

// DefaultLegacyStatuses maps the deprecated status vocabulary to the
// canonical one. Historical rows and old API clients may still carry
// these values, so normalization runs at every read boundary.
var DefaultLegacyStatuses = map[string]Status{
	"pending":           StatusDraft,
	"changes_requested": StatusNeedsUpdate,
	"commented":         StatusReviewRequest,
	"approved":          StatusApproved,
}

// Normalizer converts raw status strings to canonical values. The
// legacy table is fixed at construction; the Normalizer never mutates
// shared state and is safe for concurrent use.
type Normalizer struct {
	legacy map[string]Status
}

// NewNormalizer builds a Normalizer with the given legacy mapping. The
// mapping is copied. Passing nil uses DefaultLegacyStatuses.
func NewNormalizer(legacy map[string]Status) *Normalizer {
	if legacy == nil {
		legacy = DefaultLegacyStatuses
	}
	table := make(map[string]Status, len(legacy))
	for raw, canonical := range legacy {
		table[raw] = canonical
	}
	return &Normalizer{legacy: table}
}

// Normalize returns the canonical status for raw. Canonical input
// passes through unchanged; legacy input is translated; anything else
// fails with an UnknownStatusError.
func (n *Normalizer) Normalize(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	if s := Status(trimmed); s.Valid() {
		return s, nil
	}
	if s, ok := n.legacy[trimmed]; ok {
		return s, nil
	}
	return "", &UnknownStatusError{Value: raw}
}
