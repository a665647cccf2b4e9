package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/alerting"
	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/httpapi/middleware"
	"github.com/hamed0406/netumo/internal/repo"
	"github.com/hamed0406/netumo/internal/uptime"
)

// Sched is the slice of the scheduler the API drives: target lifecycle
// events translate into registration changes and immediate checks.
type Sched interface {
	ScheduleTarget(t *domain.Target)
	ScheduleHTTP(id domain.TargetID, intervalMinutes int)
	CancelTarget(id domain.TargetID)
	Enqueue(job domain.CheckJob)
}

type Server struct {
	Logger  *zap.Logger
	Targets repo.TargetStore
	Alerts  repo.AlertStore
	Manager *alerting.Manager
	Uptime  *uptime.Service
	Sched   Sched

	RateLimitPerMin int
}

func NewServer(l *zap.Logger, ts repo.TargetStore, as repo.AlertStore, mgr *alerting.Manager, up *uptime.Service, sched Sched, rateLimitPerMin int) *Server {
	return &Server{
		Logger:          l,
		Targets:         ts,
		Alerts:          as,
		Manager:         mgr,
		Uptime:          up,
		Sched:           sched,
		RateLimitPerMin: rateLimitPerMin,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.RateLimitPerMin, s.RateLimitPerMin/2))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/targets", s.handleCreateTarget)
		r.Get("/targets", s.handleListTargets)
		r.Get("/targets/{id}", s.handleGetTarget)
		r.Patch("/targets/{id}", s.handlePatchTarget)
		r.Delete("/targets/{id}", s.handleDeleteTarget)
		r.Get("/targets/{id}/uptime", s.handleUptime)

		r.Get("/alerts", s.handleListAlerts)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
