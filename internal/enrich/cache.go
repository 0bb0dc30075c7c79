package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Cache persists scan results per domain so repeated searches don't re-fetch
// the same sites.
type Cache struct {
	DB  *sql.DB
	TTL time.Duration
}

func (c *Cache) Get(ctx context.Context, domain string) (SiteContacts, bool, error) {
	var emailsJSON, phonesJSON, socialsJSON, fetchedAt string
	err := c.DB.QueryRowContext(ctx, `
SELECT emails, phones, socials, fetched_at
FROM site_contacts
WHERE domain = ?;`, domain).Scan(&emailsJSON, &phonesJSON, &socialsJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SiteContacts{}, false, nil
	}
	if err != nil {
		return SiteContacts{}, false, err
	}

	if c.TTL > 0 {
		if t, perr := time.Parse(time.RFC3339, fetchedAt); perr == nil && time.Since(t) > c.TTL {
			return SiteContacts{}, false, nil
		}
	}

	sc := SiteContacts{Domain: domain, Socials: map[string]string{}}
	_ = json.Unmarshal([]byte(emailsJSON), &sc.Emails)
	_ = json.Unmarshal([]byte(phonesJSON), &sc.Phones)
	_ = json.Unmarshal([]byte(socialsJSON), &sc.Socials)
	return sc, true, nil
}

func (c *Cache) Put(ctx context.Context, sc SiteContacts) error {
	emails, _ := json.Marshal(sc.Emails)
	phones, _ := json.Marshal(sc.Phones)
	socials, _ := json.Marshal(sc.Socials)

	_, err := c.DB.ExecContext(ctx, `
INSERT OR REPLACE INTO site_contacts(domain, emails, phones, socials, fetched_at)
VALUES(?,?,?,?,?);`,
		sc.Domain, string(emails), string(phones), string(socials),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
