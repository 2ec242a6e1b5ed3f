package adapthttp

import (
	"net/http"

	"periodtracker/internal/domain"
)

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.days.Profile(r.Context()))
}

func (s *Server) handleProfilePatch(w http.ResponseWriter, r *http.Request) {
	var body domain.ProfileUpdate
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.days.UpdateProfile(r.Context(), body); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.days.Profile(r.Context()))
}

func (s *Server) handleSymptomAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label string `json:"label"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.days.AddSymptom(r.Context(), body.Label); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.days.Profile(r.Context()))
}
