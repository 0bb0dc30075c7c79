package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs
// srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	broker := NewToggleBroker(d.ToggleTimeout)

	// Search
	sh := SearchHandler{Session: d.Session, Runner: d.Runner, CfgVal: d.CfgVal}
	mux.HandleFunc("/search/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))
	mux.HandleFunc("/search/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Status,
	}))
	mux.HandleFunc("/search/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Results,
	}))

	// Contacts
	ch := ContactsHandler{
		Store:   d.Contacts,
		Toggler: d.Toggler,
		Session: d.Session,
		Broker:  broker,
		Hub:     d.Hub,
	}
	mux.HandleFunc("/contacts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.List,
	}))
	mux.HandleFunc("/contacts/toggle", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.ToggleBegin,
	}))
	mux.HandleFunc("/contacts/toggle/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.ToggleResolve, // /contacts/toggle/{op}/confirm|decline
	}))

	// Enrichment
	eh := EnrichHandler{Enricher: d.Enricher, CfgVal: d.CfgVal}
	mux.HandleFunc("/enrich/site", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: eh.Site,
	}))

	// Config
	cfgh := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfgh.Get,
		http.MethodPut: cfgh.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfgh.Path,
	}))

	// Secrets
	sech := SecretsHandler{}
	mux.HandleFunc("/api/secrets/places", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sech.SetPlacesKey,
		http.MethodDelete: sech.DeletePlacesKey,
	}))

	// SSE events
	evh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: evh.ServeSSE,
	}))

	// Health + DB maintenance
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: DBHandler{DB: d.DB}.Checkpoint,
	}))

	return mux
}
