// Package places talks to the external places-search API: free-form text
// search with token-based paging, plus per-place detail lookups.
package places

import (
	"context"
	"fmt"
)

const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// Place is the field set both the search and the details endpoints return.
type Place struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
	Address string `json:"formatted_address"`
	Phone   string `json:"formatted_phone_number"`
	Website string `json:"website"`
}

// Page is one page of search results. NextToken is non-empty when the
// provider offers a further page; the provider requires a minimum delay
// before the token becomes valid.
type Page struct {
	Places    []Place
	NextToken string
}

// Provider is what the aggregator needs from the places API.
type Provider interface {
	// Ready performs the provider bootstrap. Success is memoized; failure
	// is retried, so it is called before every search.
	Ready(ctx context.Context) error
	TextSearch(ctx context.Context, query string) (Page, error)
	NextPage(ctx context.Context, token string) (Page, error)
	Details(ctx context.Context, placeID string) (Place, error)
}

// StatusError is a non-ok, non-zero-results answer from the provider. It
// aborts the whole search; partial pages are discarded by the caller.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places: provider status %s", e.Status)
	}
	return fmt.Sprintf("places: provider status %s: %s", e.Status, e.Message)
}
