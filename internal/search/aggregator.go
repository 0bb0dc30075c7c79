// Package search turns one (category, location) query into the full,
// detail-enriched candidate list and owns the published result state.
package search

import (
	"context"
	"log"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/places"

	"golang.org/x/sync/errgroup"
)

type Aggregator struct {
	provider      places.Provider
	pageDelay     time.Duration
	detailWorkers int

	// swapped out in tests so the delay assertion doesn't wall-clock wait
	sleep func(ctx context.Context, d time.Duration) error
}

func NewAggregator(provider places.Provider, pageDelay time.Duration, detailWorkers int) *Aggregator {
	if detailWorkers <= 0 {
		detailWorkers = 8
	}
	return &Aggregator{
		provider:      provider,
		pageDelay:     pageDelay,
		detailWorkers: detailWorkers,
		sleep:         sleepCtx,
	}
}

// Run fetches every page for the query, waiting the provider-mandated delay
// between pages, then enriches each item with a detail lookup. Any provider
// status error aborts the whole run; pages already fetched are discarded with
// it. A failed detail lookup keeps the summary item, never drops it.
func (a *Aggregator) Run(ctx context.Context, q domain.SearchQuery) ([]domain.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := a.provider.Ready(ctx); err != nil {
		return nil, err
	}

	page, err := a.provider.TextSearch(ctx, q.Text())
	if err != nil {
		return nil, err
	}

	acc := append([]places.Place(nil), page.Places...)
	for page.NextToken != "" {
		if err := a.sleep(ctx, a.pageDelay); err != nil {
			return nil, err
		}
		page, err = a.provider.NextPage(ctx, page.NextToken)
		if err != nil {
			return nil, err
		}
		acc = append(acc, page.Places...)
	}

	a.hydrate(ctx, acc)

	out := make([]domain.Candidate, 0, len(acc))
	for _, p := range acc {
		out = append(out, domain.Candidate{
			PlaceID: p.PlaceID,
			Name:    p.Name,
			Address: p.Address,
			Phone:   p.Phone,
			Website: p.Website,
		})
	}
	return out, nil
}

// hydrate fans out detail lookups and writes results back in place, so the
// final order stays the provider's search-result order regardless of which
// lookup finishes first.
func (a *Aggregator) hydrate(ctx context.Context, acc []places.Place) {
	var g errgroup.Group
	g.SetLimit(a.detailWorkers)

	for i := range acc {
		if acc[i].PlaceID == "" {
			continue
		}
		i := i
		g.Go(func() error {
			d, err := a.provider.Details(ctx, acc[i].PlaceID)
			if err != nil {
				// fall back to the summary row already held
				log.Printf("[search] detail lookup failed place_id=%s err=%v", acc[i].PlaceID, err)
				return nil
			}
			acc[i] = mergeDetail(acc[i], d)
			return nil
		})
	}
	_ = g.Wait()
}

func mergeDetail(summary, detail places.Place) places.Place {
	out := detail
	if out.PlaceID == "" {
		out.PlaceID = summary.PlaceID
	}
	if out.Name == "" {
		out.Name = summary.Name
	}
	if out.Address == "" {
		out.Address = summary.Address
	}
	if out.Phone == "" {
		out.Phone = summary.Phone
	}
	if out.Website == "" {
		out.Website = summary.Website
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
