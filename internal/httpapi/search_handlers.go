package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/search"
)

type SearchHandler struct {
	Session *search.Session
	Runner  *search.Runner
	CfgVal  *atomic.Value // config.Config
}

type runSearchReq struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

// Run starts a new search. It does not cancel an in-flight one; the session's
// sequence number decides whose results get published.
func (h SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runSearchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	q := domain.SearchQuery{Category: req.Category, Location: req.Location}
	seq, err := h.Runner.Start(context.Background(), RequestIDFrom(r.Context()), q)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			WriteError(w, r, http.StatusBadRequest, "empty_query", err.Error())
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "search_failed", err.Error())
		return
	}

	writeJSON(w, map[string]any{"ok": true, "seq": seq})
}

func (h SearchHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Session.Status())
}

// Results serves one page of the published candidate list.
func (h SearchHandler) Results(w http.ResponseWriter, r *http.Request) {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			WriteError(w, r, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		page = n
	}

	cfg := h.CfgVal.Load().(config.Config)
	writeJSON(w, h.Session.Page(page, cfg.Search.PageSize))
}
