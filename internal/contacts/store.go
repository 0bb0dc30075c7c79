// Package contacts reconciles search results against persisted contact
// records and drives the mark/unmark toggle with optimistic apply and
// rollback.
package contacts

import (
	"context"

	"leadscout-engine/internal/domain"
)

// Store is the persisted document store for contact records: insert with
// arbitrary fields, equality-filter queries, delete by server-assigned id.
// No transactions or uniqueness guarantees are assumed.
type Store interface {
	Insert(ctx context.Context, rec domain.ContactRecord) (int64, error)
	ListByQuery(ctx context.Context, category, location string) ([]domain.ContactRecord, error)
	FindByPlace(ctx context.Context, placeID string) ([]domain.ContactRecord, error)
	DeleteByID(ctx context.Context, id int64) error
}
