package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/apiscout/pkg/catalog"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/integration"
	"github.com/matzehuels/apiscout/pkg/pipeline"
)

const maxConfigBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type endpointResponse struct {
	Domain   string `json:"domain"`
	Endpoint string `json:"endpoint"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIs(w http.ResponseWriter, r *http.Request) {
	records := s.discoverer.Discover(r.Context())
	if records == nil {
		records = []catalog.APIRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	endpoint, err := s.discoverer.ResolveEndpoint(r.Context(), domain)
	if err != nil {
		status := http.StatusBadGateway
		if apierrors.Is(err, apierrors.ErrCodeInvalidDomain) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, endpointResponse{Domain: domain, Endpoint: endpoint})
}

func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.integrator.Snapshot())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cfg, ok := s.integrator.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, apierrors.New(apierrors.ErrCodeNotFound, "no configuration for %q", name))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := apierrors.ValidateAPIName(name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var cfg integration.Config
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody)).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}
	if t, ok := cfg[integration.TypeKey].(string); !ok || t == "" {
		writeError(w, http.StatusBadRequest, apierrors.New(apierrors.ErrCodeInvalidInput, "configuration must have a string %q field", integration.TypeKey))
		return
	}

	if err := s.integrator.Set(name, cfg); err != nil {
		s.logger.Error("failed to update config", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("Updated config for " + name)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleIntegrate(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	report, err := s.runner.Run(r.Context(), pipeline.RunOptions{LoadMapping: true, DryRun: dryRun})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: apierrors.UserMessage(err),
		Code:  string(apierrors.GetCode(err)),
	})
}
