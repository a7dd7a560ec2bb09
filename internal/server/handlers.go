package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"voicedecoder/internal/estimate"
	"voicedecoder/internal/history"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/preflight"
	"voicedecoder/internal/services"
	"voicedecoder/internal/transcription"
	"voicedecoder/internal/whisper"
)

// SubmitRequest is the body of POST /api/transcriptions.
type SubmitRequest struct {
	Path          string `json:"path"`
	Model         string `json:"model,omitempty"`
	KeepConverted *bool  `json:"keep_converted,omitempty"`
	Language      string `json:"language,omitempty"`
	Reuse         bool   `json:"reuse,omitempty"`
}

// DeviceResponse is the body of GET /api/device.
type DeviceResponse struct {
	Kind     string `json:"kind"`
	Advisory string `json:"advisory,omitempty"`
	Label    string `json:"label"`
}

// EstimateResponse is the body of GET /api/estimate.
type EstimateResponse struct {
	estimate.Result
	Projected string `json:"projected"`
	Message   string `json:"message"`
}

// ListResponse is the body of GET /api/transcriptions.
type ListResponse struct {
	Jobs    []Job         `json:"jobs"`
	History []history.Run `json:"history,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Ready  bool               `json:"ready"`
	Checks []preflight.Result `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := s.Preflight(r.Context())
	resp := HealthResponse{Ready: len(preflight.Failures(checks)) == 0, Checks: checks}
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Selector == nil {
		s.writeError(w, http.StatusServiceUnavailable, "device selection unavailable")
		return
	}
	choice := s.deps.Selector.Select(r.Context())
	s.writeJSON(w, http.StatusOK, DeviceResponse{
		Kind:     choice.Kind.String(),
		Advisory: choice.Advisory,
		Label:    choice.Label(),
	})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Estimator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "estimator unavailable")
		return
	}
	query := r.URL.Query()
	path := strings.TrimSpace(query.Get("path"))
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	size, err := s.resolveSize(query.Get("model"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.Estimator.Estimate(r.Context(), path, size)
	message := estimate.Describe(result, err)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, estimate.ErrDurationUndetermined) {
			status = http.StatusUnprocessableEntity
		}
		s.writeJSON(w, status, map[string]string{"error": message})
		return
	}
	s.writeJSON(w, http.StatusOK, EstimateResponse{Result: result, Projected: result.Projected(), Message: message})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	path := strings.TrimSpace(body.Path)
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		s.writeError(w, http.StatusBadRequest, "path is not a readable file")
		return
	}
	size, err := s.resolveSize(body.Model)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := body.Language
	if strings.TrimSpace(lang) == "" {
		lang = s.deps.Config.Transcription.Language
	}
	lang, err = whisper.NormalizeLanguage(lang)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	keep := s.deps.Config.Transcription.KeepConverted
	if body.KeepConverted != nil {
		keep = *body.KeepConverted
	}

	job := &Job{
		ID:        uuid.NewString(),
		Input:     path,
		Model:     size.String(),
		Language:  lang,
		Keep:      keep,
		Status:    JobQueued,
		CreatedAt: time.Now().UTC(),
	}
	snapshot := *job
	req := transcription.Request{Input: path, Size: size, KeepConverted: keep, Language: lang}
	queued := func() {
		s.hub.Broadcast(Event{Type: EventQueued, RunID: job.ID, Data: map[string]any{"input": path, "model": job.Model}})
	}
	if err := s.queue.enqueue(job, req, body.Reuse, queued); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	logging.WithContext(r.Context(), s.logger).Info("transcription queued",
		logging.String("run_id", job.ID),
		logging.String("input", path),
		logging.String("model", job.Model),
	)
	s.writeJSON(w, http.StatusAccepted, snapshot)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	resp := ListResponse{Jobs: s.queue.list()}
	if s.deps.History != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := s.deps.History.List(r.Context(), limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.History = runs
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if job, ok := s.queue.get(id); ok {
		s.writeJSON(w, http.StatusOK, job)
		return
	}
	if s.deps.History == nil {
		s.writeError(w, http.StatusNotFound, "transcription not found")
		return
	}
	run, err := s.deps.History.Get(r.Context(), id)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, run)
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "transcription not found")
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) resolveSize(value string) (whisper.Size, error) {
	if strings.TrimSpace(value) == "" {
		value = s.deps.Config.Transcription.Model
	}
	return whisper.ParseSize(value)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
