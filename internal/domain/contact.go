package domain

import "time"

// ContactRecord is the persisted marker that a candidate was contacted,
// scoped to the query that found it. Category/location match is exact and
// case-sensitive. At most one record exists per (place, category, location);
// the same place marked under different queries yields distinct records, so
// removal sweeps every record carrying the place id.
type ContactRecord struct {
	ID        int64     `json:"id"`
	PlaceID   string    `json:"placeId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Category  string    `json:"category"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

func RecordFromCandidate(c Candidate, q SearchQuery, at time.Time) ContactRecord {
	return ContactRecord{
		PlaceID:   c.PlaceID,
		Name:      c.Name,
		Address:   c.Address,
		Phone:     c.Phone,
		Website:   c.Website,
		Category:  q.Category,
		Location:  q.Location,
		CreatedAt: at,
	}
}
