package contacts

import (
	"context"

	"leadscout-engine/internal/domain"
)

type Reconciler struct {
	Store Store
}

// Apply marks contacted=true for every candidate whose place id has a record
// under the exact same (category, location). No fuzzy matching; the strings
// must equal the ones used at search time.
func (r Reconciler) Apply(ctx context.Context, cands []domain.Candidate, q domain.SearchQuery) ([]domain.Candidate, error) {
	recs, err := r.Store.ListByQuery(ctx, q.Category, q.Location)
	if err != nil {
		return nil, err
	}
	return MarkContacted(cands, recs), nil
}

// MarkContacted is the pure half of reconciliation: set membership on the
// external place identifier.
func MarkContacted(cands []domain.Candidate, recs []domain.ContactRecord) []domain.Candidate {
	contacted := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if r.PlaceID != "" {
			contacted[r.PlaceID] = struct{}{}
		}
	}

	out := make([]domain.Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		_, ok := contacted[out[i].PlaceID]
		out[i].Contacted = ok && out[i].PlaceID != ""
	}
	return out
}
