package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/alerting"
	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
	"github.com/hamed0406/netumo/internal/uptime"
)

type createTargetPayload struct {
	URL                    string `json:"url"`
	Name                   string `json:"name"`
	CheckIntervalMinutes   int    `json:"check_interval_minutes"`
	NotificationEmail      string `json:"notification_email"`
	NotificationWebhookURL string `json:"notification_webhook_url"`
}

func validTargetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var p createTargetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || !validTargetURL(p.URL) {
		writeError(w, http.StatusBadRequest, "a valid http(s) url is required")
		return
	}
	if p.CheckIntervalMinutes <= 0 {
		p.CheckIntervalMinutes = 5
	}

	t := &domain.Target{
		URL:                    p.URL,
		Name:                   p.Name,
		NotificationEmail:      p.NotificationEmail,
		NotificationWebhookURL: p.NotificationWebhookURL,
		IsActive:               true,
		CheckIntervalMinutes:   p.CheckIntervalMinutes,
		CreatedAt:              time.Now().UTC(),
	}
	if err := s.Targets.Create(r.Context(), t); err != nil {
		if errors.Is(err, repo.ErrDuplicateURL) {
			writeError(w, http.StatusConflict, "target url already registered")
			return
		}
		s.Logger.Error("create_target_failed", zap.String("url", p.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create target")
		return
	}

	// recurring registrations plus one immediate availability check so the
	// caller sees a status quickly
	s.Sched.ScheduleTarget(t)
	s.Sched.Enqueue(domain.CheckJob{TargetID: t.ID, Kind: domain.KindHTTP})

	s.Logger.Info("target_created",
		zap.String("target_id", string(t.ID)),
		zap.String("url", t.URL),
		zap.Int("interval_minutes", t.CheckIntervalMinutes),
	)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	t, err := s.Targets.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "target not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type patchTargetPayload struct {
	IsActive             *bool `json:"is_active"`
	CheckIntervalMinutes *int  `json:"check_interval_minutes"`
}

func (s *Server) handlePatchTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	t, err := s.Targets.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "target not found")
		return
	}

	var p patchTargetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if p.CheckIntervalMinutes != nil && *p.CheckIntervalMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "check_interval_minutes must be positive")
		return
	}

	if p.CheckIntervalMinutes != nil {
		if err := s.Targets.SetInterval(r.Context(), id, *p.CheckIntervalMinutes); err != nil {
			writeError(w, http.StatusInternalServerError, "update error")
			return
		}
		t.CheckIntervalMinutes = *p.CheckIntervalMinutes
	}
	if p.IsActive != nil {
		if err := s.Targets.SetActive(r.Context(), id, *p.IsActive); err != nil {
			writeError(w, http.StatusInternalServerError, "update error")
			return
		}
		t.IsActive = *p.IsActive
	}

	// lifecycle changes drive the scheduler: activation (re)registers all
	// three checks, deactivation cancels them, an interval change while
	// active re-registers the http check at the new cadence
	switch {
	case p.IsActive != nil && !*p.IsActive:
		s.Sched.CancelTarget(id)
	case p.IsActive != nil && *p.IsActive:
		s.Sched.ScheduleTarget(t)
		s.Sched.Enqueue(domain.CheckJob{TargetID: id, Kind: domain.KindHTTP})
	case p.CheckIntervalMinutes != nil && t.IsActive:
		s.Sched.ScheduleHTTP(id, *p.CheckIntervalMinutes)
	}

	updated, err := s.Targets.Get(r.Context(), id)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	s.Logger.Info("target_updated", zap.String("target_id", string(id)))
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	s.Sched.CancelTarget(id)
	if err := s.Targets.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete error")
		return
	}
	s.Logger.Info("target_deleted", zap.String("target_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	windowHours := 24
	if q := r.URL.Query().Get("window"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive number of hours")
			return
		}
		windowHours = n
	}

	sum, err := s.Uptime.Summarize(r.Context(), id, windowHours)
	if err != nil {
		if errors.Is(err, uptime.ErrTargetNotFound) {
			writeError(w, http.StatusNotFound, "target not found")
			return
		}
		s.Logger.Error("uptime_summary_failed", zap.String("target_id", string(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "summary error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	f := repo.AlertFilter{
		TargetID: domain.TargetID(r.URL.Query().Get("targetId")),
		Type:     domain.AlertType(r.URL.Query().Get("type")),
		Status:   domain.AlertStatus(r.URL.Query().Get("status")),
	}
	alerts, err := s.Alerts.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := domain.AlertID(chi.URLParam(r, "id"))
	alert, err := s.Manager.Acknowledge(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, alerting.ErrNotFound):
			writeError(w, http.StatusNotFound, "alert not found")
		case errors.Is(err, alerting.ErrAlreadyResolved):
			writeError(w, http.StatusBadRequest, "Cannot acknowledge a resolved alert")
		default:
			writeError(w, http.StatusInternalServerError, "acknowledge error")
		}
		return
	}
	writeJSON(w, http.StatusOK, alert)
}
