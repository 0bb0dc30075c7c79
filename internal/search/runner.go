package search

import (
	"context"
	"log"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/events"
)

// ReconcileFunc annotates freshly aggregated candidates against the persisted
// contact records for the same query.
type ReconcileFunc func(ctx context.Context, cands []domain.Candidate, q domain.SearchQuery) ([]domain.Candidate, error)

type Notifier interface {
	Publish(evt string)
}

// Runner ties one search request together: begin a sequenced run, aggregate,
// reconcile, publish. Overlapping runs are allowed; the session's sequence
// check makes the latest Begin win regardless of completion order.
type Runner struct {
	Agg       *Aggregator
	Session   *Session
	Reconcile ReconcileFunc
	Events    Notifier
}

// Start validates the query and kicks off the run in the background.
func (r *Runner) Start(ctx context.Context, reqID string, q domain.SearchQuery) (uint64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	seq := r.Session.Begin(q)
	r.publish(events.MakeEvent(reqID, events.TypeSearchStarted, 1, map[string]any{"seq": seq, "query": q}))

	go r.run(ctx, reqID, seq, q)
	return seq, nil
}

func (r *Runner) run(ctx context.Context, reqID string, seq uint64, q domain.SearchQuery) {
	cands, err := r.Agg.Run(ctx, q)
	if err != nil {
		log.Printf("[search] run seq=%d failed: %v", seq, err)
		if r.Session.Fail(seq, err.Error()) {
			r.publish(events.MakeEvent(reqID, events.TypeSearchFailed, 1, map[string]any{"seq": seq, "error": err.Error()}))
		}
		return
	}

	if r.Reconcile != nil {
		annotated, rerr := r.Reconcile(ctx, cands, q)
		if rerr != nil {
			log.Printf("[search] run seq=%d reconcile failed: %v", seq, rerr)
			if r.Session.Fail(seq, rerr.Error()) {
				r.publish(events.MakeEvent(reqID, events.TypeSearchFailed, 1, map[string]any{"seq": seq, "error": rerr.Error()}))
			}
			return
		}
		cands = annotated
	}

	if !r.Session.Publish(seq, q, cands) {
		log.Printf("[search] run seq=%d superseded, results dropped", seq)
		return
	}
	log.Printf("[search] run seq=%d ok results=%d", seq, len(cands))
	r.publish(events.MakeEvent(reqID, events.TypeSearchFinished, 1, map[string]any{"seq": seq, "results": len(cands)}))
}

func (r *Runner) publish(evt string) {
	if r.Events != nil {
		r.Events.Publish(evt)
	}
}
