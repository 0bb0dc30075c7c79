package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu sync.Mutex

	pages    []places.Page
	pageErr  map[int]error // page index -> error
	details  map[string]places.Place
	failDets map[string]bool

	searchCalls int
	nextCalls   int
	readyErr    error
}

func (f *fakeProvider) Ready(ctx context.Context) error { return f.readyErr }

func (f *fakeProvider) TextSearch(ctx context.Context, query string) (places.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.page(0)
}

func (f *fakeProvider) NextPage(ctx context.Context, token string) (places.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCalls++
	return f.page(f.nextCalls)
}

func (f *fakeProvider) page(i int) (places.Page, error) {
	if err, ok := f.pageErr[i]; ok {
		return places.Page{}, err
	}
	if i >= len(f.pages) {
		return places.Page{}, errors.New("no such page")
	}
	return f.pages[i], nil
}

func (f *fakeProvider) Details(ctx context.Context, placeID string) (places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDets[placeID] {
		return places.Place{}, &places.StatusError{Status: "NOT_FOUND"}
	}
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return places.Place{}, &places.StatusError{Status: "NOT_FOUND"}
}

func noSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func summaries(ids ...string) []places.Place {
	out := make([]places.Place, 0, len(ids))
	for _, id := range ids {
		out = append(out, places.Place{PlaceID: id, Name: "summary " + id, Address: "addr " + id})
	}
	return out
}

func TestRunAggregatesAllPages(t *testing.T) {
	p := &fakeProvider{
		pages: []places.Page{
			{Places: summaries("a", "b", "c"), NextToken: "t1"},
			{Places: summaries("d", "e"), NextToken: "t2"},
			{Places: summaries("f")},
		},
		failDets: map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true, "f": true},
	}

	agg := NewAggregator(p, 2*time.Second, 4)
	var slept []time.Duration
	agg.sleep = noSleep(&slept)

	got, err := agg.Run(context.Background(), domain.SearchQuery{Category: "plumber", Location: "Lisbon"})
	require.NoError(t, err)
	assert.Len(t, got, 6)

	// order follows search-result order even though detail fan-out ran
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.PlaceID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids)

	// the delay ran between every page pair and never below the minimum
	require.Len(t, slept, 2)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, 2*time.Second)
	}
}

func TestRunZeroResultsIsEmptySuccess(t *testing.T) {
	p := &fakeProvider{pages: []places.Page{{}}}
	agg := NewAggregator(p, 2*time.Second, 4)

	got, err := agg.Run(context.Background(), domain.SearchQuery{Category: "x", Location: "y"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunProviderErrorDiscardsPartialPages(t *testing.T) {
	p := &fakeProvider{
		pages: []places.Page{
			{Places: summaries("a", "b"), NextToken: "t1"},
		},
		pageErr: map[int]error{1: &places.StatusError{Status: "OVER_QUERY_LIMIT"}},
	}
	agg := NewAggregator(p, 2*time.Second, 4)
	var slept []time.Duration
	agg.sleep = noSleep(&slept)

	got, err := agg.Run(context.Background(), domain.SearchQuery{Category: "x", Location: "y"})
	require.Error(t, err)
	var se *places.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "OVER_QUERY_LIMIT", se.Status)
	assert.Nil(t, got)
}

func TestRunDetailFailureKeepsSummary(t *testing.T) {
	p := &fakeProvider{
		pages: []places.Page{{Places: summaries("ok", "broken")}},
		details: map[string]places.Place{
			"ok": {
				PlaceID: "ok",
				Name:    "Enriched Co",
				Address: "1 Enriched St",
				Phone:   "+351 000 000",
				Website: "https://enriched.example",
			},
		},
		failDets: map[string]bool{"broken": true},
	}
	agg := NewAggregator(p, 2*time.Second, 4)

	got, err := agg.Run(context.Background(), domain.SearchQuery{Category: "x", Location: "y"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Enriched Co", got[0].Name)
	assert.Equal(t, "+351 000 000", got[0].Phone)

	// the broken one fell back to the summary row, never dropped
	assert.Equal(t, "broken", got[1].PlaceID)
	assert.Equal(t, "summary broken", got[1].Name)

	// every candidate starts unmarked
	for _, c := range got {
		assert.False(t, c.Contacted)
	}
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	agg := NewAggregator(&fakeProvider{}, 2*time.Second, 4)
	_, err := agg.Run(context.Background(), domain.SearchQuery{Category: " ", Location: "y"})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestRunSurfacesBootstrapFailure(t *testing.T) {
	p := &fakeProvider{readyErr: errors.New("no api key")}
	agg := NewAggregator(p, 2*time.Second, 4)
	_, err := agg.Run(context.Background(), domain.SearchQuery{Category: "x", Location: "y"})
	require.EqualError(t, err, "no api key")
	assert.Zero(t, p.searchCalls)
}
