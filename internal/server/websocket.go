package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketExtractResponse represents an extraction response via WebSocket.
type WebSocketExtractResponse struct {
	Type      string  `json:"type"`
	Status    string  `json:"status"` // "processing", "completed", "error"
	Stage     string  `json:"stage,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Result    any     `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	ErrorType string  `json:"error_type,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// extractWebSocketHandler handles WebSocket connections for streaming
// extraction progress.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(r.Context(), conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

// handleWebSocketMessage processes one extraction request message.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, data []byte) {
	var req ExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	// Generate a request ID for tracking
	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "processing",
		Progress:  0.0,
		RequestID: requestID,
	})

	s.processWebSocketExtract(ctx, conn, req, requestID)
}

// processWebSocketExtract runs the extraction pipeline for a WebSocket
// request, streaming per-stage progress to the client.
func (s *Server) processWebSocketExtract(ctx context.Context, conn *websocket.Conn, req ExtractRequest, requestID string) {
	if req.Image == "" {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	img, _, err := decodeRequestImage(req.Image)
	if err != nil {
		extractRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	progress := func(stage string, completed, total int) {
		frac := 0.0
		if total > 0 {
			frac = float64(completed) / float64(total)
		}
		s.sendWebSocketResponse(conn, WebSocketExtractResponse{
			Type:      "extract_response",
			Status:    "processing",
			Stage:     stage,
			Progress:  frac,
			RequestID: requestID,
		})
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImageProgress(ctx, img, req.Filename, req.Text, progress)
	duration := time.Since(start)

	if err != nil {
		extractRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Extraction failed: %v", err))
		return
	}

	env, err := res.Envelope(true)
	if err != nil {
		extractRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to read extracted figures: %v", err))
		return
	}

	extractRequestsTotal.WithLabelValues("websocket", "success").Inc()
	extractProcessingDuration.WithLabelValues("websocket").Observe(duration.Seconds())
	extractRegionsDetected.WithLabelValues("websocket").Observe(float64(len(res.Regions)))
	extractFiguresPersisted.WithLabelValues("websocket").Observe(float64(env.ExtractedCount))

	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    env,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketExtractResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketExtractResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
