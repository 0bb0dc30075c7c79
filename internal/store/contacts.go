package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"leadscout-engine/internal/domain"
)

// ContactStore is the sqlite-backed contact record store. It satisfies
// contacts.Store.
type ContactStore struct {
	DB *sql.DB
}

// Insert is idempotent per (place_id, category, location): marking an already
// marked candidate returns the live record's id instead of creating a
// duplicate.
func (s ContactStore) Insert(ctx context.Context, rec domain.ContactRecord) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
INSERT OR IGNORE INTO contacts(place_id, name, address, phone, website, category, location, created_at)
VALUES(?,?,?,?,?,?,?,?);`,
		rec.PlaceID, rec.Name, rec.Address, rec.Phone, rec.Website,
		rec.Category, rec.Location, rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, _ := res.LastInsertId()
		return id, nil
	}

	var id int64
	err = s.DB.QueryRowContext(ctx, `
SELECT id FROM contacts
WHERE place_id = ? AND category = ? AND location = ?;`,
		rec.PlaceID, rec.Category, rec.Location).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find existing contact: %w", err)
	}
	return id, nil
}

// ListByQuery matches category and location exactly (case-sensitive), the
// same strings that were used at search time.
func (s ContactStore) ListByQuery(ctx context.Context, category, location string) ([]domain.ContactRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, place_id, name, address, phone, website, category, location, created_at
FROM contacts
WHERE category = ? AND location = ?
ORDER BY created_at DESC;`, category, location)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s ContactStore) FindByPlace(ctx context.Context, placeID string) ([]domain.ContactRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, place_id, name, address, phone, website, category, location, created_at
FROM contacts
WHERE place_id = ?;`, placeID)
	if err != nil {
		return nil, fmt.Errorf("find contacts by place: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s ContactStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]domain.ContactRecord, error) {
	var out []domain.ContactRecord
	for rows.Next() {
		var r domain.ContactRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PlaceID, &r.Name, &r.Address, &r.Phone,
			&r.Website, &r.Category, &r.Location, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
