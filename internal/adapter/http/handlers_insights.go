package adapthttp

import (
	"net/http"

	"periodtracker/internal/domain"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.days.Stats(r.Context()))
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	cycles := s.days.Cycles(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   cycles,
		"summary": domain.SummarizeCycles(cycles),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = s.days.Today()[:7]
	}
	days, err := s.calendar.Month(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "days": days})
}
