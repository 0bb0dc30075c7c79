package search

import (
	"context"
	"testing"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitState(t *testing.T, s *Session, want State) Status {
	t.Helper()
	var st Status
	require.Eventually(t, func() bool {
		st = s.Status()
		return st.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestRunnerSuccessReconciles(t *testing.T) {
	p := &fakeProvider{
		pages:    []places.Page{{Places: summaries("a", "b")}},
		failDets: map[string]bool{"a": true, "b": true},
	}
	session := NewSession()
	r := &Runner{
		Agg:     NewAggregator(p, 2*time.Second, 2),
		Session: session,
		Reconcile: func(_ context.Context, cs []domain.Candidate, _ domain.SearchQuery) ([]domain.Candidate, error) {
			out := append([]domain.Candidate(nil), cs...)
			for i := range out {
				if out[i].PlaceID == "b" {
					out[i].Contacted = true
				}
			}
			return out, nil
		},
	}

	_, err := r.Start(context.Background(), "", domain.SearchQuery{Category: "cafe", Location: "Porto"})
	require.NoError(t, err)

	st := waitState(t, session, StateSuccess)
	assert.Equal(t, 2, st.Results)

	c, ok := session.Candidate(1)
	require.True(t, ok)
	assert.True(t, c.Contacted)
}

func TestRunnerZeroResultsEndsSuccess(t *testing.T) {
	p := &fakeProvider{pages: []places.Page{{}}}
	session := NewSession()
	r := &Runner{Agg: NewAggregator(p, 2*time.Second, 2), Session: session}

	_, err := r.Start(context.Background(), "", domain.SearchQuery{Category: "cafe", Location: "Nowhere"})
	require.NoError(t, err)

	st := waitState(t, session, StateSuccess)
	assert.Equal(t, 0, st.Results)
}

func TestRunnerProviderErrorEndsError(t *testing.T) {
	p := &fakeProvider{pageErr: map[int]error{0: &places.StatusError{Status: "REQUEST_DENIED"}}}
	session := NewSession()
	r := &Runner{Agg: NewAggregator(p, 2*time.Second, 2), Session: session}

	_, err := r.Start(context.Background(), "", domain.SearchQuery{Category: "cafe", Location: "Porto"})
	require.NoError(t, err)

	st := waitState(t, session, StateError)
	assert.Contains(t, st.LastError, "REQUEST_DENIED")
	assert.Equal(t, 0, st.Results)
}

func TestRunnerRejectsEmptyQuery(t *testing.T) {
	r := &Runner{Agg: NewAggregator(&fakeProvider{}, 2*time.Second, 2), Session: NewSession()}
	_, err := r.Start(context.Background(), "", domain.SearchQuery{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}
