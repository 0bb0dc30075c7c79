package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"leadscout-engine/internal/contacts"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/search"
)

type ContactsHandler struct {
	Store   contacts.Store
	Toggler *contacts.Toggler
	Session *search.Session
	Broker  *ToggleBroker
	Hub     *events.Hub
}

// List returns the persisted contact records for one exact (category,
// location) pair.
func (h ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	location := q.Get("location")
	if category == "" || location == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "category and location are required")
		return
	}

	recs, err := h.Store.ListByQuery(r.Context(), category, location)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, recs)
}

type toggleReq struct {
	Index int `json:"index"` // 0-based position in the full result list
}

// ToggleBegin flips the row optimistically and parks the op until the UI's
// confirmation dialog answers. The response carries the already-applied
// optimistic value.
func (h ContactsHandler) ToggleBegin(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cand, ok := h.Session.Candidate(req.Index)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "row_not_found", "no candidate at that index")
		return
	}
	query := h.Session.Query()
	reqID := RequestIDFrom(r.Context())

	// pinned to the current list: if a newer search publishes while the op
	// waits on the dialog, its flips are refused instead of landing on
	// whatever row holds this index in the new list
	rows := h.Session.PinnedRows()

	op := h.Broker.begin()

	go func() {
		// outlives the begin request on purpose; bounded by the
		// confirmation timeout plus the store call
		ctx, cancel := context.WithTimeout(context.Background(), h.Broker.timeout+30*time.Second)
		defer cancel()

		toggler := *h.Toggler
		toggler.Confirm = opConfirmer{op: op, timeout: h.Broker.timeout}

		res, err := toggler.Toggle(ctx, op.id, rows, req.Index, cand, query)
		h.Broker.finish(op, res, err)

		switch {
		case err != nil, res.State == contacts.StateRolledBack:
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeToggleRolledBack, 1, map[string]any{"op": op.id, "index": req.Index}))
		case res.Contacted:
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeContactMarked, 1, map[string]any{"op": op.id, "index": req.Index}))
		default:
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeContactUnmarked, 1, map[string]any{"op": op.id, "index": req.Index, "removed": res.Removed}))
		}
	}()

	writeJSON(w, map[string]any{
		"op":        op.id,
		"state":     contacts.StateOptimisticApplied,
		"contacted": !cand.Contacted,
	})
}

// ToggleResolve handles /contacts/toggle/{op}/confirm and .../decline: feed
// the user's answer to the pending op and wait for its final state.
func (h ContactsHandler) ToggleResolve(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/contacts/toggle/")
	opID, action, ok := strings.Cut(rest, "/")
	if !ok || opID == "" || (action != "confirm" && action != "decline") {
		WriteError(w, r, http.StatusNotFound, "not_found", "expected /contacts/toggle/{op}/confirm|decline")
		return
	}

	op := h.Broker.get(opID)
	if op == nil {
		WriteError(w, r, http.StatusNotFound, "op_not_found", "no pending toggle with that id")
		return
	}

	h.Broker.resolve(op, action == "confirm")

	select {
	case <-op.done:
	case <-r.Context().Done():
		return
	case <-time.After(30 * time.Second):
		WriteError(w, r, http.StatusGatewayTimeout, "toggle_timeout", "toggle did not settle in time")
		return
	}

	if op.err != nil {
		// the flag was already rolled back; tell the user why
		WriteJSON(w, http.StatusBadGateway, map[string]any{
			"op":     op.id,
			"state":  op.result.State,
			"error":  op.err.Error(),
			"notice": op.result.Notice,
		})
		return
	}
	writeJSON(w, op.result)
}
