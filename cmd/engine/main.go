package main

import (
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/contacts"
	"leadscout-engine/internal/enrich"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/httpapi"
	"leadscout-engine/internal/places"
	"leadscout-engine/internal/search"
	"leadscout-engine/internal/secrets"
	"leadscout-engine/internal/store"

	"github.com/gofrs/flock"
)

func main() {
	// Engine data dir: use env if provided (the UI shell can pass one),
	// else local folder.
	dataDir := os.Getenv("LEADSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over the
	// sqlite writer.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance already holds %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		cfg, _ = config.NormalizeAndValidate(cfg)
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "leadscout.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	limiter := places.NewHostLimiter(cfg.Places.ReqPerSec, 2)
	provider := places.NewClient(places.ClientConfig{
		BaseURL:  cfg.Places.BaseURL,
		Language: cfg.Places.Language,
		Region:   cfg.Places.Region,
		Timeout:  time.Duration(cfg.Places.TimeoutSecs) * time.Second,
		APIKey:   secrets.GetPlacesAPIKey,
	}, limiter)

	contactStore := store.ContactStore{DB: db.Pool}
	session := search.NewSession()

	agg := search.NewAggregator(
		provider,
		time.Duration(cfg.Places.PageDelayMS)*time.Millisecond,
		cfg.Search.DetailWorkers,
	)
	runner := &search.Runner{
		Agg:       agg,
		Session:   session,
		Reconcile: contacts.Reconciler{Store: contactStore}.Apply,
		Events:    hub,
	}

	toggler := &contacts.Toggler{Store: contactStore}

	enricher := enrich.New(
		time.Duration(cfg.Enrich.TimeoutSecs)*time.Second,
		cfg.Enrich.MaxBytes,
		limiter,
		&enrich.Cache{DB: db.Pool, TTL: 7 * 24 * time.Hour},
	)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Session:     session,
		Runner:      runner,
		Contacts:    contactStore,
		Toggler:     toggler,
		Enricher:    enricher,
	})

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	// the UI shell reads the token from here to stop us cleanly
	tokenPath := filepath.Join(dataDir, "engine.token")
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		log.Fatal(err)
	}
	defer os.Remove(tokenPath)

	addr := net.JoinHostPort("127.0.0.1", itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.Cors,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	log.Fatal(srv.Serve(ln))
}
