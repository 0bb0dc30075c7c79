package contacts

import (
	"context"
	"testing"

	"leadscout-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkContactedSetMembership(t *testing.T) {
	cands := []domain.Candidate{
		{PlaceID: "A"}, {PlaceID: "B"}, {PlaceID: "C"},
	}
	recs := []domain.ContactRecord{
		{PlaceID: "B", Category: "plumber", Location: "Lisbon"},
	}

	got := MarkContacted(cands, recs)
	assert.False(t, got[0].Contacted)
	assert.True(t, got[1].Contacted)
	assert.False(t, got[2].Contacted)

	// input slice untouched
	assert.False(t, cands[1].Contacted)
}

func TestMarkContactedIgnoresEmptyIDs(t *testing.T) {
	cands := []domain.Candidate{{PlaceID: ""}}
	recs := []domain.ContactRecord{{PlaceID: ""}}
	got := MarkContacted(cands, recs)
	assert.False(t, got[0].Contacted)
}

func TestReconcilerScopesToExactQuery(t *testing.T) {
	// the store only returns records for the exact (category, location)
	// pair; a record for B under another location never reaches the set
	st := &fakeStore{
		byQuery: map[string][]domain.ContactRecord{
			"plumber|Lisbon": {{ID: 1, PlaceID: "B", Category: "plumber", Location: "Lisbon"}},
			"plumber|Porto":  {{ID: 2, PlaceID: "C", Category: "plumber", Location: "Porto"}},
		},
	}
	r := Reconciler{Store: st}

	got, err := r.Apply(context.Background(),
		[]domain.Candidate{{PlaceID: "A"}, {PlaceID: "B"}, {PlaceID: "C"}},
		domain.SearchQuery{Category: "plumber", Location: "Lisbon"},
	)
	require.NoError(t, err)
	assert.False(t, got[0].Contacted)
	assert.True(t, got[1].Contacted)
	assert.False(t, got[2].Contacted)
}
