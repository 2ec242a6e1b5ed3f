package adapthttp

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"periodtracker/internal/domain"
)

func (s *Server) handleEntriesList(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q", d))
			return
		}
	}

	items := make([]domain.DayEntry, 0)
	for _, e := range s.days.Entries(r.Context()) {
		if (from != "" && e.Date < from) || (to != "" && e.Date > to) {
			continue
		}
		items = append(items, e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleEntryGet(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := domain.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", domain.ErrInvalidEntry, err))
		return
	}
	writeJSON(w, http.StatusOK, s.days.Day(r.Context(), date))
}

func (s *Server) handleEntryPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Flow     domain.Flow `json:"flow"`
		Symptoms []string    `json:"symptoms"`
		Notes    string      `json:"notes"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	date := chi.URLParam(r, "date")
	entry := domain.DayEntry{Date: date, Flow: body.Flow, Symptoms: body.Symptoms, Notes: body.Notes}
	if err := s.days.UpsertEntry(r.Context(), entry); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.days.Day(r.Context(), date))
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.days.RemoveEntry(r.Context(), chi.URLParam(r, "date")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
