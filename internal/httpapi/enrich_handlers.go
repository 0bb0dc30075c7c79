package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/enrich"
)

type EnrichHandler struct {
	Enricher *enrich.Enricher
	CfgVal   *atomic.Value // config.Config
}

type enrichReq struct {
	Website string `json:"website"`
}

// Site scans one candidate website for extra contact channels. Strictly
// best-effort; the UI calls it on row expand.
func (h EnrichHandler) Site(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if !cfg.Enrich.Enabled {
		WriteError(w, r, http.StatusConflict, "enrich_disabled", "website enrichment is disabled in config")
		return
	}

	var req enrichReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Website == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_website", "website is required")
		return
	}

	sc, err := h.Enricher.Site(r.Context(), req.Website)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "enrich_failed", err.Error())
		return
	}
	writeJSON(w, sc)
}
