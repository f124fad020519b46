// Package api exposes recorded sessions, their results and ADE analysis
// over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/db"
	"github.com/cogmotion/rotation.report/internal/report"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the session API backed by the session store.
type Server struct {
	db *db.DB
}

// NewServer builds an API server over the given store.
func NewServer(database *db.DB) *Server {
	return &Server{db: database}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.listSessions)
	mux.HandleFunc("/session", s.showSession)
	mux.HandleFunc("/session/results", s.showResults)
	mux.HandleFunc("/session/ade", s.showADE)
	mux.HandleFunc("/session/chart", s.showChart)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, query, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.ListSessions()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []db.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// sessionFromQuery resolves the ?id= parameter, writing the error response
// itself when the session cannot be served.
func (s *Server) sessionFromQuery(w http.ResponseWriter, r *http.Request) (*db.Session, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing id parameter")
		return nil, false
	}
	session, err := s.db.GetSession(id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return session, true
}

func (s *Server) showSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) showResults(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	results, err := s.db.SessionResults(session.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// groupFit flattens the partition key into the fit record so the crossed
// partition serializes as a flat JSON list.
type groupFit struct {
	analysis.Group
	analysis.Fit
}

type adeResponse struct {
	Summary       analysis.Summary        `json:"summary"`
	ByCorrectness map[string]analysis.Fit `json:"by_correctness"`
	ByGroup       []groupFit              `json:"by_group"`
	Comparison    analysis.Comparison     `json:"comparison"`
}

func (s *Server) showADE(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	results, err := s.db.SessionResults(session.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byCorrect := analysis.ByCorrectness(results)
	resp := adeResponse{
		Summary: analysis.Summarize(results),
		ByCorrectness: map[string]analysis.Fit{
			"correct":   byCorrect[true],
			"incorrect": byCorrect[false],
		},
		Comparison: analysis.CompareConditions(results),
	}
	for group, fit := range analysis.ByCorrectnessAndRotation(results) {
		resp.ByGroup = append(resp.ByGroup, groupFit{Group: group, Fit: fit})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	results, err := s.db.SessionResults(session.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	title := "ADE: angle vs response time (session " + session.ID + ")"
	if err := report.ADEChart(&buf, title, results); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
