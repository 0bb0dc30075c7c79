package search

import (
	"sync"
	"time"

	"leadscout-engine/internal/domain"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

type Status struct {
	State      State               `json:"state"`
	Seq        uint64              `json:"seq"`
	Query      *domain.SearchQuery `json:"query,omitempty"`
	Results    int                 `json:"results"`
	LastError  string              `json:"last_error,omitempty"`
	StartedAt  string              `json:"started_at,omitempty"`
	FinishedAt string              `json:"finished_at,omitempty"`
}

// Session is the engine-side shared result state. Runs are tagged with a
// sequence number at Begin; Publish and Fail are dropped when a newer run has
// begun since, so a stale completion can never overwrite a fresher one.
type Session struct {
	mu      sync.Mutex
	seq     uint64
	version uint64 // bumped on every Publish; lets PinnedRows detect replacement
	status  Status
	query   domain.SearchQuery
	results []domain.Candidate
}

func NewSession() *Session {
	return &Session{status: Status{State: StateIdle}}
}

func (s *Session) Begin(q domain.SearchQuery) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.status = Status{
		State:     StateLoading,
		Seq:       s.seq,
		Query:     &q,
		Results:   len(s.results),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return s.seq
}

// Publish installs a finished run's candidates. Returns false (and changes
// nothing) when the run is stale.
func (s *Session) Publish(seq uint64, q domain.SearchQuery, cands []domain.Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.query = q
	s.results = cands
	s.version++
	s.status = Status{
		State:      StateSuccess,
		Seq:        seq,
		Query:      &q,
		Results:    len(cands),
		StartedAt:  s.status.StartedAt,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return true
}

// Fail surfaces the error state. The previously published list is left
// unchanged; the failed run's partial pages were already discarded.
func (s *Session) Fail(seq uint64, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.status = Status{
		State:      StateError,
		Seq:        seq,
		Query:      s.status.Query,
		Results:    len(s.results),
		LastError:  errMsg,
		StartedAt:  s.status.StartedAt,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return true
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Query() domain.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Session) Candidate(index int) (domain.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.results) {
		return domain.Candidate{}, false
	}
	return s.results[index], true
}

// SetContacted flips the in-memory flag for one row. This is the optimistic
// half of a toggle; the contacts package drives the rollback.
func (s *Session) SetContacted(index int, v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.results) {
		return false
	}
	s.results[index].Contacted = v
	return true
}

// PinnedRows is a writer over the list that was published when it was taken.
// Once a newer list is published its writes fail, so a toggle parked on a
// confirmation dialog can never flip a row in a list it did not start from.
type PinnedRows struct {
	s       *Session
	version uint64
}

func (s *Session) PinnedRows() *PinnedRows {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &PinnedRows{s: s, version: s.version}
}

func (p *PinnedRows) SetContacted(index int, v bool) bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.version != p.s.version {
		return false
	}
	if index < 0 || index >= len(p.s.results) {
		return false
	}
	p.s.results[index].Contacted = v
	return true
}
