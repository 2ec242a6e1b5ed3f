package adapthttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"periodtracker/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	days     *app.DayLog
	calendar *app.CalendarService
	logger   *slog.Logger
	webDir   string
}

// New creates a Server wired to the given application services.
func New(days *app.DayLog, calendar *app.CalendarService, logger *slog.Logger, webDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{days: days, calendar: calendar, logger: logger, webDir: webDir}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		r.Get("/entries", s.handleEntriesList)
		r.Get("/entries/{date}", s.handleEntryGet)
		r.Put("/entries/{date}", s.handleEntryPut)
		r.Delete("/entries/{date}", s.handleEntryDelete)

		r.Get("/cycles", s.handleCycles)
		r.Get("/stats", s.handleStats)
		r.Get("/calendar", s.handleCalendar)

		r.Get("/profile", s.handleProfileGet)
		r.Patch("/profile", s.handleProfilePatch)
		r.Post("/profile/symptoms", s.handleSymptomAdd)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/clear", s.handleClear)

		r.Get("/events", s.handleEvents)
	})

	r.Handle("/*", spaFromDisk(s.webDir))

	return withNoCache(r)
}
