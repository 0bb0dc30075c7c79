package httpapi

import (
	"encoding/json"
	"net/http"

	"leadscout-engine/internal/secrets"
)

type SecretsHandler struct{}

type setPlacesKeyReq struct {
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetPlacesKey(w http.ResponseWriter, r *http.Request) {
	var req setPlacesKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := secrets.SetPlacesAPIKey(req.APIKey); err != nil {
		http.Error(w, "failed to store key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeletePlacesKey(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeletePlacesAPIKey(); err != nil {
		http.Error(w, "failed to delete key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
