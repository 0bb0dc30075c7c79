package httpapi

import (
	"database/sql"
	"sync/atomic"
	"time"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/contacts"
	"leadscout-engine/internal/enrich"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/search"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// CfgVal stores config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Session *search.Session
	Runner  *search.Runner

	Contacts contacts.Store
	Toggler  *contacts.Toggler

	Enricher *enrich.Enricher

	// How long a pending toggle waits for the user's yes/no before it is
	// treated as declined.
	ToggleTimeout time.Duration
}
