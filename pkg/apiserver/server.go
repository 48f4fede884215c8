/*
Copyright 2020 the Velero contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package apiserver exposes the orchestrator as a JSON HTTP API.
package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/orchestrator"
)

const (
	RequestIDHeader = "X-Request-ID"
	nameParam       = "name"
)

type contextKey string

const loggerKey contextKey = "logger"

type Server struct {
	logrus.FieldLogger
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.ServerMetrics
}

func NewServer(o *orchestrator.Orchestrator, serverMetrics *metrics.ServerMetrics, logger logrus.FieldLogger) *Server {
	return &Server{
		FieldLogger:  logger,
		orchestrator: o,
		metrics:      serverMetrics,
	}
}

// Routes returns the router of the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/backups", func(r chi.Router) {
		r.Get("/", unnamed(s.orchestrator.ListBackups))
		r.Post("/", s.createBackup)
		r.Delete("/", named(s.orchestrator.DeleteBackup))
		r.Get("/logs", named(s.orchestrator.BackupLogs))
		r.Get("/describe", named(s.orchestrator.DescribeBackup))
	})
	r.Route("/restores", func(r chi.Router) {
		r.Get("/", unnamed(s.orchestrator.ListRestores))
		r.Post("/", s.createRestore)
		r.Delete("/", named(s.orchestrator.DeleteRestore))
		r.Get("/logs", named(s.orchestrator.RestoreLogs))
		r.Get("/describe", named(s.orchestrator.DescribeRestore))
	})
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", unnamed(s.orchestrator.ListSchedules))
		r.Post("/", s.createSchedule)
		r.Delete("/", named(s.orchestrator.DeleteSchedule))
		r.Get("/describe", named(s.orchestrator.DescribeSchedule))
	})
	r.Get("/storages", unnamed(s.orchestrator.ListStorages))

	return r
}

func unnamed(call func(context.Context) orchestrator.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, call(r.Context()))
	}
}

// named passes the "name" query parameter to call.
func named(call func(context.Context, string) orchestrator.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, call(r.Context(), r.URL.Query().Get(nameParam)))
	}
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.BackupRequest
	if !decode(w, r, &req) {
		return
	}
	writeResponse(w, s.orchestrator.CreateBackup(r.Context(), req))
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.ScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	writeResponse(w, s.orchestrator.CreateSchedule(r.Context(), req))
}

func (s *Server) createRestore(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.RestoreRequest
	if !decode(w, r, &req) {
		return
	}
	writeResponse(w, s.orchestrator.CreateRestore(r.Context(), req))
}

func decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		LoggerFromContext(r.Context()).WithError(err).Warn("Invalid request body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body. " + err.Error()})
		return false
	}
	return true
}

func writeResponse(w http.ResponseWriter, response orchestrator.Response) {
	writeJSON(w, response.Status, response.Body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestLogger tags every request with an ID, logs it once served and
// observes its duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		log := s.WithFields(logrus.Fields{
			"request-id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, log)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		duration := time.Since(start)
		s.metrics.ObserveRequest(route, r.Method, status, duration)
		log.WithFields(logrus.Fields{"status": status, "duration": duration}).Info("Served request")
	})
}

// LoggerFromContext returns the request scoped logger, or the standard logger outside of a request.
func LoggerFromContext(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
