package contacts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"leadscout-engine/internal/domain"

	"github.com/google/uuid"
)

// Toggle state machine, one instance per user-initiated toggle:
// Idle -> OptimisticApplied -> {Confirmed | RolledBack}.
type State string

const (
	StateIdle              State = "idle"
	StateOptimisticApplied State = "optimistic_applied"
	StateConfirmed         State = "confirmed"
	StateRolledBack        State = "rolled_back"
)

// Confirmer is the blocking yes/no interaction gating every write/delete.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Rows is the in-memory result list a toggle mutates optimistically.
// *search.Session satisfies it.
type Rows interface {
	SetContacted(index int, v bool) bool
}

var ErrRowGone = errors.New("contacts: row no longer in the result list")

type Result struct {
	OpID      string `json:"op"`
	State     State  `json:"state"`
	Contacted bool   `json:"contacted"`
	Removed   int    `json:"removed,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

type Toggler struct {
	Store   Store
	Confirm Confirmer
	Now     func() time.Time

	// OnTransition, when set, observes every state change of an op.
	OnTransition func(opID string, s State)
}

func (t *Toggler) transition(opID string, s State) {
	if t.OnTransition != nil {
		t.OnTransition(opID, s)
	}
}

// Toggle flips one candidate's contacted flag optimistically, asks for
// confirmation, then persists or deletes. Any persistence failure or a
// declined confirmation reverts the in-memory flag. Only one toggle is
// expected in flight per row; overlapping toggles on the same row are not
// serialized.
// The caller may supply its own opID to correlate the op across an
// asynchronous confirmation flow; an empty one gets generated.
func (t *Toggler) Toggle(ctx context.Context, opID string, rows Rows, index int, cand domain.Candidate, q domain.SearchQuery) (Result, error) {
	if opID == "" {
		opID = uuid.NewString()
	}
	t.transition(opID, StateIdle)

	oldVal := cand.Contacted
	newVal := !oldVal

	if !rows.SetContacted(index, newVal) {
		return Result{OpID: opID, State: StateIdle, Contacted: oldVal}, ErrRowGone
	}
	t.transition(opID, StateOptimisticApplied)

	prompt := fmt.Sprintf("Mark %q as contacted?", cand.Name)
	if !newVal {
		prompt = fmt.Sprintf("Remove the contacted mark for %q?", cand.Name)
	}

	ok, err := t.Confirm.Confirm(ctx, prompt)
	if err != nil || !ok {
		rows.SetContacted(index, oldVal)
		t.transition(opID, StateRolledBack)
		if err != nil {
			return Result{OpID: opID, State: StateRolledBack, Contacted: oldVal}, fmt.Errorf("confirmation: %w", err)
		}
		// declined: revert immediately, no network call
		return Result{OpID: opID, State: StateRolledBack, Contacted: oldVal}, nil
	}

	if newVal {
		return t.persist(ctx, rows, index, opID, oldVal, cand, q)
	}
	return t.remove(ctx, rows, index, opID, oldVal, cand)
}

func (t *Toggler) persist(ctx context.Context, rows Rows, index int, opID string, oldVal bool, cand domain.Candidate, q domain.SearchQuery) (Result, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	rec := domain.RecordFromCandidate(cand, q, now())

	id, err := t.Store.Insert(ctx, rec)
	if err != nil {
		rows.SetContacted(index, oldVal)
		t.transition(opID, StateRolledBack)
		return Result{OpID: opID, State: StateRolledBack, Contacted: oldVal}, fmt.Errorf("save contact: %w", err)
	}

	log.Printf("[contacts] marked place_id=%s record=%d", cand.PlaceID, id)
	t.transition(opID, StateConfirmed)
	return Result{OpID: opID, State: StateConfirmed, Contacted: true}, nil
}

func (t *Toggler) remove(ctx context.Context, rows Rows, index int, opID string, oldVal bool, cand domain.Candidate) (Result, error) {
	recs, err := t.Store.FindByPlace(ctx, cand.PlaceID)
	if err != nil {
		rows.SetContacted(index, oldVal)
		t.transition(opID, StateRolledBack)
		return Result{OpID: opID, State: StateRolledBack, Contacted: oldVal}, fmt.Errorf("find contacts: %w", err)
	}

	// Delete every record for the place; the same place may be marked under
	// several queries and unmarking clears them all.
	removed := 0
	for _, rec := range recs {
		if err := t.Store.DeleteByID(ctx, rec.ID); err != nil {
			rows.SetContacted(index, oldVal)
			t.transition(opID, StateRolledBack)
			return Result{OpID: opID, State: StateRolledBack, Contacted: oldVal, Removed: removed},
				fmt.Errorf("delete contact %d: %w", rec.ID, err)
		}
		removed++
	}

	t.transition(opID, StateConfirmed)
	res := Result{OpID: opID, State: StateConfirmed, Contacted: false, Removed: removed}
	if removed == 0 {
		// soft notice; the flag stays off
		res.Notice = "nothing to remove"
		log.Printf("[contacts] unmark place_id=%s found no records", cand.PlaceID)
	} else {
		log.Printf("[contacts] unmarked place_id=%s removed=%d", cand.PlaceID, removed)
	}
	return res, nil
}
