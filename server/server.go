// Copyright 2025 Quillstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/extract"
	"github.com/quillstore/quillstore/ingestion"
	"github.com/quillstore/quillstore/storage"
)

// Server exposes the ingestion pipeline over HTTP.
type Server struct {
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
	http     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a Server for the given pipeline listening on addr.
func New(pipeline *ingestion.Pipeline, addr string, opts ...Option) (*Server, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	s := &Server{
		pipeline: pipeline,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/datasets/{datasetID}/collections/file", s.handleIngestFile)

	return r
}

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// uploadSidecar is the optional JSON "data" part of the multipart upload.
// It must precede the "file" part so the body can be streamed.
type uploadSidecar struct {
	Name     string            `json:"name"`
	Bucket   string            `json:"bucket"`
	Encoding string            `json:"encoding"`
	Metadata map[string]string `json:"metadata"`
}

// ingestResponse is the success body of the ingestion endpoint.
type ingestResponse struct {
	CollectionId string         `json:"collectionId"`
	Results      []insertResult `json:"results"`
}

type insertResult struct {
	ChunkId       uint64 `json:"chunkId"`
	Index         int    `json:"index"`
	TokenEstimate int    `json:"tokenEstimate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var sidecar uploadSidecar
	for {
		part, err := reader.NextPart()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("multipart body has no file part"))
			return
		}

		switch part.FormName() {
		case "data":
			if err := json.NewDecoder(part).Decode(&sidecar); err != nil {
				s.writeError(w, http.StatusBadRequest, err)
				return
			}
		case "file":
			req := ingestion.Request{
				DatasetId:      datasetID,
				Proof:          proofFrom(r),
				FileName:       part.FileName(),
				ContentType:    part.Header.Get("Content-Type"),
				Encoding:       sidecar.Encoding,
				Bucket:         sidecar.Bucket,
				CollectionName: sidecar.Name,
				CollectionMeta: sidecar.Metadata,
			}

			result, err := s.pipeline.Ingest(r.Context(), req, part)
			if err != nil {
				s.writeError(w, statusFor(err), err)
				return
			}

			results := make([]insertResult, len(result.InsertResults))
			for i, ir := range result.InsertResults {
				results[i] = insertResult{
					ChunkId:       uint64(ir.ChunkId),
					Index:         ir.Index,
					TokenEstimate: ir.TokenEstimate,
				}
			}
			s.writeJSON(w, http.StatusOK, ingestResponse{
				CollectionId: result.CollectionId,
				Results:      results,
			})
			return
		default:
			// unknown parts are skipped
		}
	}
}

// proofFrom extracts the caller's proof from the request headers. A Bearer
// Authorization header carries a token; X-API-Key carries an API key.
func proofFrom(r *http.Request) auth.Proof {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return auth.Proof{APIKey: key}
	}
	header := r.Header.Get("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")
	return auth.Proof{Token: strings.TrimSpace(token)}
}

// statusFor maps pipeline failure kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingestion.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrUnreadableFile), errors.Is(err, extract.ErrUnsupportedEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
