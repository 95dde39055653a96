package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/region"
)

// extractPipeline defines the methods the server needs from a pipeline.
type extractPipeline interface {
	ProcessImage(ctx context.Context, img image.Image, filename, rawText string) (*pipeline.Result, error)
	ProcessImageProgress(ctx context.Context, img image.Image, filename, rawText string,
		progress pipeline.ProgressFunc) (*pipeline.Result, error)
	Synthesize(rawText string, regions []region.DetectedRegion) []blocks.ContentBlock
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    extractPipeline
	corsOrigin  string
	maxUploadMB int64
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
}

// ExtractRequest is the JSON body of POST /extract. Image carries base64
// encoded bytes, optionally as a data URI. Text, when present, feeds block
// synthesis alongside extraction.
type ExtractRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename,omitempty"`
	Text     string `json:"text,omitempty"`
}

// BlockRegion is the region shape accepted by POST /blocks; geometry is not
// needed for annotation blocks.
type BlockRegion struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// BlocksRequest is the JSON body of POST /blocks.
type BlocksRequest struct {
	Text    string        `json:"text"`
	Regions []BlockRegion `json:"regions,omitempty"`
}

// BlocksResponse is the reply of POST /blocks.
type BlocksResponse struct {
	Success bool                  `json:"success"`
	Blocks  []blocks.ContentBlock `json:"blocks"`
	Error   string                `json:"error,omitempty"`
}

// HealthResponse reports server health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// NewServer creates a server around an existing pipeline.
func NewServer(p extractPipeline, config Config) *Server {
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	maxUploadMB := config.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Server{
		pipeline:    p,
		corsOrigin:  corsOrigin,
		maxUploadMB: maxUploadMB,
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/blocks", s.corsMiddleware(s.blocksHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
