package scatterd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lgpang/smash/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type HTTPServer struct {
	mux     *http.ServeMux
	service *Service
}

func NewHTTPServer(service *Service) *HTTPServer {
	s := &HTTPServer{
		mux:     http.NewServeMux(),
		service: service,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/collide", s.handleCollide)
	s.mux.HandleFunc("/v1/branches", s.handleBranches)
	s.mux.HandleFunc("/v1/batch", s.handleBatch)
	s.mux.HandleFunc("GET /v1/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /v1/runs/{id}", s.handleGetRun)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCollide handles POST /v1/collide
func (s *HTTPServer) handleCollide(w http.ResponseWriter, r *http.Request) {
	var req CollideRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.Collide(r.Context(), req)
	if err != nil {
		logger.Warn("collide failed", "projectile", req.Projectile, "target", req.Target, "error", err)
		s.writeError(w, httpStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleBranches handles POST /v1/branches
func (s *HTTPServer) handleBranches(w http.ResponseWriter, r *http.Request) {
	var req CollideRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.Branches(r.Context(), req)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleBatch handles POST /v1/batch
func (s *HTTPServer) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.Batch(r.Context(), req)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleListRuns handles GET /v1/runs?limit=N
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": s.service.Runs().List(limit),
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.service.Runs().Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// decode reads a JSON POST body into v, writing the error response on failure.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
