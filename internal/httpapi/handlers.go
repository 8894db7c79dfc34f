package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// verifyRequest is the wire shape of a POST /verify body.
type verifyRequest struct {
	Uid        string                 `json:"uid"`
	MessageHex string                 `json:"message_hex"`
	Proof      oracletypes.ProofModel `json:"proof"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}

	uid, err := oracletypes.UidFromHex(req.Uid)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid uid", err)
		return
	}

	err = s.orchestrator.Verify(r.Context(), uid, req.MessageHex, req.Proof)
	if err != nil {
		respondError(w, oraclerr.HTTPStatus(err), "verification failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"verified": true})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	respondJSON(w, status, body)
}
