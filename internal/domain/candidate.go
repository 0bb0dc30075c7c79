package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Candidate is one search result row. It lives for the duration of a search
// run and is discarded when the next run publishes.
type Candidate struct {
	PlaceID   string `json:"placeId"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone,omitempty"`
	Website   string `json:"website,omitempty"`
	Contacted bool   `json:"contacted"`
}

type SearchQuery struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

var ErrEmptyQuery = errors.New("category and location are required")

func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Category) == "" || strings.TrimSpace(q.Location) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// Text is the free-form string sent to the places provider.
func (q SearchQuery) Text() string {
	return fmt.Sprintf("%s in %s", q.Category, q.Location)
}
