package web

import (
	"encoding/json"
	"net/http"

	"github.com/formatrack/server/internal/core"
)

// handleListApplications returns every application, newest first, with
// signed download URLs attached where signing succeeded.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.service.ListApplications(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

type decisionRequest struct {
	Status string `json:"status"`
}

// handleDecide sets an application's terminal status and canned message.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	enrollment, err := s.service.Decide(r.Context(), id, core.Status(req.Status), r.RemoteAddr)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// handleListDecisions returns the decision audit trail.
func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := s.service.Decisions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decisions)
}
