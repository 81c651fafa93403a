package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/protocol"
	"github.com/zeusync/handarena/internal/driver"
)

type stateResponse struct {
	State string `json:"state"`
}

type bestResponse struct {
	BestSeconds int `json:"best_seconds"`
	LastSeconds int `json:"last_seconds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	action, ok := driver.ParseAction(name)
	if !ok || action == driver.ActionSpeed {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown action " + strconv.Quote(name)})
		return
	}
	s.control(w, r, action, 0)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseFloat(r.URL.Query().Get("v"), 64)
	if err != nil || v <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "speed must be a positive number in ?v="})
		return
	}
	s.control(w, r, driver.ActionSpeed, v)
}

func (s *Server) control(w http.ResponseWriter, r *http.Request, action driver.Action, speed float64) {
	state, err := s.engine.Control(r.Context(), action, speed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("Control applied", log.String("action", action.String()), log.String("state", state.String()))
	s.writeJSON(w, http.StatusOK, stateResponse{State: state.String()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	best := 0
	if s.best != nil {
		best = s.best.Best()
	}
	s.writeJSON(w, http.StatusOK, protocol.NewFrame(snap, best))
}

func (s *Server) handleBest(w http.ResponseWriter, _ *http.Request) {
	var resp bestResponse
	if s.best != nil {
		resp = bestResponse{BestSeconds: s.best.Best(), LastSeconds: s.best.Last()}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, driver.ErrStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Response write failed", log.Error(err))
	}
}
