package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/region"
	"github.com/notefig/notefig/internal/utils"
	"github.com/notefig/notefig/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	v, _, _ := version.Info()
	response := HealthResponse{
		Status:  "healthy",
		Version: v,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// extractHandler processes figure extraction requests: a base64 image in,
// the crop manifest (with inline JPEG data) out.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		extractRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeFailure(w, "Failed to parse JSON request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		extractRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeFailure(w, "No image provided", "", http.StatusBadRequest)
		return
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	res, status, failErr := s.runExtraction(r, &req)
	if failErr != nil {
		extractRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeFailure(w, failErr.message, failErr.details, status)
		return
	}

	env, err := res.Envelope(true)
	if err != nil {
		extractRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeFailure(w, "Failed to read extracted figures", err.Error(), http.StatusInternalServerError)
		return
	}

	extractRequestsTotal.WithLabelValues("http", "success").Inc()
	extractRegionsDetected.WithLabelValues("http").Observe(float64(len(res.Regions)))
	extractFiguresPersisted.WithLabelValues("http").Observe(float64(env.ExtractedCount))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Failed to encode extract response", "error", err)
	}
}

// failure carries a user-facing message plus optional detail.
type failure struct {
	message string
	details string
}

// runExtraction decodes the request image and runs the pipeline, mapping
// errors to HTTP status codes.
func (s *Server) runExtraction(r *http.Request, req *ExtractRequest) (*pipeline.Result, int, *failure) {
	img, _, err := decodeRequestImage(req.Image)
	if err != nil {
		return nil, http.StatusBadRequest, &failure{message: "Invalid image payload", details: err.Error()}
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImage(r.Context(), img, req.Filename, req.Text)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			return nil, http.StatusBadRequest, &failure{message: "Invalid input image", details: err.Error()}
		}
		return nil, http.StatusInternalServerError, &failure{
			message: "Figure extraction failed",
			details: err.Error(),
		}
	}
	extractProcessingDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	return res, http.StatusOK, nil
}

// blocksHandler synthesizes content blocks from raw text and optional
// region annotations.
func (s *Server) blocksHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	var req BlocksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, BlocksResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to parse JSON request: %v", err),
		})
		return
	}

	regions := make([]region.DetectedRegion, 0, len(req.Regions))
	for _, br := range req.Regions {
		regions = append(regions, region.DetectedRegion{Type: br.Type, Description: br.Description})
	}

	out := s.pipeline.Synthesize(req.Text, regions)
	s.writeJSON(w, http.StatusOK, BlocksResponse{Success: true, Blocks: out})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeFailure sends the failure envelope.
func (s *Server) writeFailure(w http.ResponseWriter, message, details string, statusCode int) {
	s.writeJSON(w, statusCode, pipeline.FailureResponse(message, details))
}

func decodeRequestImage(payload string) (image.Image, string, error) {
	return utils.DecodeBase64Image(payload)
}
