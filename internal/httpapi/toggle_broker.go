package httpapi

import (
	"context"
	"sync"
	"time"

	"leadscout-engine/internal/contacts"

	"github.com/google/uuid"
)

// toggleOp is one pending toggle. The UI's confirmation dialog maps onto the
// decision channel: /confirm sends true, /decline sends false, silence times
// out as a decline.
type toggleOp struct {
	id       string
	decision chan bool
	done     chan struct{}

	result contacts.Result
	err    error
}

type ToggleBroker struct {
	mu      sync.Mutex
	ops     map[string]*toggleOp
	timeout time.Duration
}

func NewToggleBroker(timeout time.Duration) *ToggleBroker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ToggleBroker{
		ops:     make(map[string]*toggleOp),
		timeout: timeout,
	}
}

func (b *ToggleBroker) begin() *toggleOp {
	op := &toggleOp{
		id:       uuid.NewString(),
		decision: make(chan bool, 1),
		done:     make(chan struct{}),
	}
	b.mu.Lock()
	b.ops[op.id] = op
	b.mu.Unlock()
	return op
}

func (b *ToggleBroker) get(id string) *toggleOp {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ops[id]
}

func (b *ToggleBroker) finish(op *toggleOp, res contacts.Result, err error) {
	op.result, op.err = res, err
	close(op.done)

	// keep the op around briefly so a confirm that raced the timeout can
	// still read the outcome
	time.AfterFunc(time.Minute, func() {
		b.mu.Lock()
		delete(b.ops, op.id)
		b.mu.Unlock()
	})
}

// confirmer adapts one op into the blocking yes/no collaborator the toggle
// core expects.
type opConfirmer struct {
	op      *toggleOp
	timeout time.Duration
}

func (c opConfirmer) Confirm(ctx context.Context, _ string) (bool, error) {
	t := time.NewTimer(c.timeout)
	defer t.Stop()
	select {
	case d := <-c.op.decision:
		return d, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-t.C:
		// no answer counts as a decline
		return false, nil
	}
}

func (b *ToggleBroker) resolve(op *toggleOp, decision bool) {
	select {
	case op.decision <- decision:
	default:
		// already decided or timed out
	}
}
