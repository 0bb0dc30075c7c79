package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/contacts"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/places"
	"leadscout-engine/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	page places.Page
	err  error
}

func (s stubProvider) Ready(context.Context) error { return nil }
func (s stubProvider) TextSearch(context.Context, string) (places.Page, error) {
	return s.page, s.err
}
func (s stubProvider) NextPage(context.Context, string) (places.Page, error) {
	return places.Page{}, nil
}
func (s stubProvider) Details(context.Context, string) (places.Place, error) {
	return places.Place{}, &places.StatusError{Status: "NOT_FOUND"}
}

type memStore struct {
	recs   []domain.ContactRecord
	nextID int64
}

func (m *memStore) Insert(_ context.Context, rec domain.ContactRecord) (int64, error) {
	m.nextID++
	rec.ID = m.nextID
	m.recs = append(m.recs, rec)
	return rec.ID, nil
}

func (m *memStore) ListByQuery(_ context.Context, category, location string) ([]domain.ContactRecord, error) {
	var out []domain.ContactRecord
	for _, r := range m.recs {
		if r.Category == category && r.Location == location {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) FindByPlace(_ context.Context, placeID string) ([]domain.ContactRecord, error) {
	var out []domain.ContactRecord
	for _, r := range m.recs {
		if r.PlaceID == placeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) error {
	out := m.recs[:0]
	for _, r := range m.recs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	m.recs = out
	return nil
}

func newTestServer(t *testing.T, provider places.Provider, st contacts.Store) (*httptest.Server, *search.Session) {
	t.Helper()

	var cfgVal atomic.Value
	cfgVal.Store(config.Default())

	session := search.NewSession()
	hub := events.NewHub()

	mux := NewMux(Deps{
		Hub:     hub,
		CfgVal:  &cfgVal,
		Session: session,
		Runner: &search.Runner{
			Agg:       search.NewAggregator(provider, 2*time.Second, 2),
			Session:   session,
			Reconcile: contacts.Reconciler{Store: st}.Apply,
			Events:    hub,
		},
		Contacts:      st,
		Toggler:       &contacts.Toggler{Store: st},
		ToggleTimeout: 5 * time.Second,
	})

	srv := httptest.NewServer(Chain(mux, Cors, RequestID, Recover))
	t.Cleanup(srv.Close)
	return srv, session
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, stubProvider{}, &memStore{})
	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body := decode[map[string]any](t, res)
	assert.Equal(t, true, body["ok"])
}

func TestSearchRunRejectsEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t, stubProvider{}, &memStore{})
	res := postJSON(t, srv.URL+"/search/run", map[string]string{"category": "", "location": "x"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestSearchRunThenResults(t *testing.T) {
	provider := stubProvider{page: places.Page{Places: []places.Place{
		{PlaceID: "A", Name: "Acme"},
		{PlaceID: "B", Name: "Bolt"},
	}}}
	st := &memStore{}
	_, err := st.Insert(context.Background(), domain.ContactRecord{PlaceID: "B", Category: "plumber", Location: "Lisbon"})
	require.NoError(t, err)

	srv, session := newTestServer(t, provider, st)

	res := postJSON(t, srv.URL+"/search/run", map[string]string{"category": "plumber", "location": "Lisbon"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	require.Eventually(t, func() bool {
		return session.Status().State == search.StateSuccess
	}, 2*time.Second, 5*time.Millisecond)

	rres, err := http.Get(srv.URL + "/search/results?page=1")
	require.NoError(t, err)
	view := decode[search.PageView](t, rres)
	assert.Equal(t, 2, view.Total)
	require.Len(t, view.Rows, 2)
	// reconciliation marked only the persisted place
	assert.False(t, view.Rows[0].Contacted)
	assert.True(t, view.Rows[1].Contacted)
}

func publishOne(session *search.Session, contacted bool) {
	q := domain.SearchQuery{Category: "plumber", Location: "Lisbon"}
	seq := session.Begin(q)
	session.Publish(seq, q, []domain.Candidate{{PlaceID: "A", Name: "Acme", Contacted: contacted}})
}

func TestToggleConfirmFlow(t *testing.T) {
	st := &memStore{}
	srv, session := newTestServer(t, stubProvider{}, st)
	publishOne(session, false)

	res := postJSON(t, srv.URL+"/contacts/toggle", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, res.StatusCode)
	begin := decode[map[string]any](t, res)
	opID := begin["op"].(string)
	assert.Equal(t, string(contacts.StateOptimisticApplied), begin["state"])
	assert.Equal(t, true, begin["contacted"])

	// the optimistic flip lands in the op goroutine
	require.Eventually(t, func() bool {
		c, _ := session.Candidate(0)
		return c.Contacted
	}, time.Second, 5*time.Millisecond)

	cres := postJSON(t, srv.URL+"/contacts/toggle/"+opID+"/confirm", nil)
	require.Equal(t, http.StatusOK, cres.StatusCode)
	final := decode[contacts.Result](t, cres)
	assert.Equal(t, contacts.StateConfirmed, final.State)
	assert.True(t, final.Contacted)

	require.Len(t, st.recs, 1)
	assert.Equal(t, "A", st.recs[0].PlaceID)
	assert.Equal(t, "plumber", st.recs[0].Category)
}

func TestToggleDeclineFlow(t *testing.T) {
	st := &memStore{}
	srv, session := newTestServer(t, stubProvider{}, st)
	publishOne(session, false)

	res := postJSON(t, srv.URL+"/contacts/toggle", map[string]int{"index": 0})
	begin := decode[map[string]any](t, res)
	opID := begin["op"].(string)

	dres := postJSON(t, srv.URL+"/contacts/toggle/"+opID+"/decline", nil)
	require.Equal(t, http.StatusOK, dres.StatusCode)
	final := decode[contacts.Result](t, dres)
	assert.Equal(t, contacts.StateRolledBack, final.State)
	assert.False(t, final.Contacted)

	c, _ := session.Candidate(0)
	assert.False(t, c.Contacted)
	assert.Empty(t, st.recs)
}

func TestToggleDoesNotTouchNewerSearchResults(t *testing.T) {
	st := &memStore{}
	srv, session := newTestServer(t, stubProvider{}, st)
	publishOne(session, false)

	res := postJSON(t, srv.URL+"/contacts/toggle", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, res.StatusCode)
	begin := decode[map[string]any](t, res)
	opID := begin["op"].(string)

	require.Eventually(t, func() bool {
		c, _ := session.Candidate(0)
		return c.Contacted
	}, time.Second, 5*time.Millisecond)

	// a newer search replaces the list while the op waits on the dialog
	q := domain.SearchQuery{Category: "cafe", Location: "Porto"}
	seq := session.Begin(q)
	session.Publish(seq, q, []domain.Candidate{{PlaceID: "X", Name: "Xavier", Contacted: true}})

	dres := postJSON(t, srv.URL+"/contacts/toggle/"+opID+"/decline", nil)
	require.Equal(t, http.StatusOK, dres.StatusCode)
	final := decode[contacts.Result](t, dres)
	assert.Equal(t, contacts.StateRolledBack, final.State)

	// the rollback was refused; the new list keeps its own flag
	c, _ := session.Candidate(0)
	assert.True(t, c.Contacted)
	assert.Empty(t, st.recs)
}

func TestToggleUnknownOp(t *testing.T) {
	srv, _ := newTestServer(t, stubProvider{}, &memStore{})
	res := postJSON(t, srv.URL+"/contacts/toggle/nope/confirm", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestToggleOutOfRangeIndex(t *testing.T) {
	srv, _ := newTestServer(t, stubProvider{}, &memStore{})
	res := postJSON(t, srv.URL+"/contacts/toggle", map[string]int{"index": 3})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestContactsListRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t, stubProvider{}, &memStore{})
	res, err := http.Get(srv.URL + "/contacts?category=plumber")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}
