package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefig/notefig/internal/artifact"
	"github.com/notefig/notefig/internal/pipeline"
)

func TestServer_HealthHandler(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkResponse  bool
	}{
		{
			name:           "GET request success",
			method:         "GET",
			expectedStatus: http.StatusOK,
			checkResponse:  true,
		},
		{
			name:           "POST request not allowed",
			method:         "POST",
			expectedStatus: http.StatusMethodNotAllowed,
			checkResponse:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			server.healthHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse {
				var response HealthResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)

				assert.Equal(t, "healthy", response.Status)
				assert.NotEmpty(t, response.Time)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_ExtractHandler_MethodNotAllowed(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	req := httptest.NewRequest("GET", "/extract", nil)
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_ExtractHandler_InvalidJSON(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	req := httptest.NewRequest("POST", "/extract", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Failed to parse JSON request")
}

func TestServer_ExtractHandler_MissingImage(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	body, _ := json.Marshal(ExtractRequest{Text: "some text"})
	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "No image provided", resp.Error)
}

func TestServer_ExtractHandler_InvalidBase64(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	body, _ := json.Marshal(ExtractRequest{Image: "!!not-base64!!"})
	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid image payload", resp.Error)
	assert.NotEmpty(t, resp.Details)
}

func TestServer_ExtractHandler_Success(t *testing.T) {
	dir := t.TempDir()
	artifactPath := filepath.Join(dir, "notes_figure_0.jpg")
	require.NoError(t, os.WriteFile(artifactPath, []byte("jpegbytes"), 0o600))

	mock := &mockPipeline{
		result: &pipeline.Result{
			BaseName: "notes",
			Width:    100,
			Height:   80,
			Artifacts: []artifact.Artifact{
				{BaseName: "notes", Index: 0, Path: artifactPath, Width: 50, Height: 40},
			},
		},
	}
	server := NewServer(mock, Config{})

	body, _ := json.Marshal(ExtractRequest{
		Image:    testImageBase64(100, 80),
		Filename: "notes.png",
	})
	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.ExtractedCount)
	require.Len(t, resp.ExtractedImages, 1)
	assert.Equal(t, "notes_figure_0.jpg", resp.ExtractedImages[0].Filename)
	assert.True(t, strings.HasPrefix(resp.ExtractedImages[0].Base64, "data:image/jpeg;base64,"))
}

func TestServer_ExtractHandler_InvalidInput(t *testing.T) {
	mock := &mockPipeline{err: pipeline.ErrInvalidInput}
	server := NewServer(mock, Config{})

	body, _ := json.Marshal(ExtractRequest{Image: testImageBase64(10, 10)})
	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid input image", resp.Error)
}

func TestServer_ExtractHandler_PipelineFailure(t *testing.T) {
	mock := &mockPipeline{err: errors.New("disk full")}
	server := NewServer(mock, Config{})

	body, _ := json.Marshal(ExtractRequest{Image: testImageBase64(10, 10)})
	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.extractHandler(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp pipeline.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Figure extraction failed", resp.Error)
	assert.Contains(t, resp.Details, "disk full")
}

func TestServer_BlocksHandler(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	body, _ := json.Marshal(BlocksRequest{
		Text: "Revenue grew steadily.\n\nThis bar chart shows quarterly growth.",
		Regions: []BlockRegion{
			{Type: "bar", Description: "Sales by quarter"},
		},
	})
	req := httptest.NewRequest("POST", "/blocks", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.blocksHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BlocksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Blocks, 4)
	assert.Equal(t, "Revenue grew steadily.", resp.Blocks[0].Text)
	assert.Equal(t, "This 📊 chart shows quarterly growth.", resp.Blocks[1].Text)
	assert.Equal(t, "Charts & Diagrams", resp.Blocks[2].Text)
	assert.Equal(t, "📊 BAR Chart: Sales by quarter", resp.Blocks[3].Text)
}

func TestServer_BlocksHandler_InvalidJSON(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	req := httptest.NewRequest("POST", "/blocks", strings.NewReader("nope"))
	w := httptest.NewRecorder()
	server.blocksHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp BlocksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Failed to parse JSON request")
}

func TestServer_BlocksHandler_MethodNotAllowed(t *testing.T) {
	server := NewServer(&mockPipeline{}, Config{})

	req := httptest.NewRequest("GET", "/blocks", nil)
	w := httptest.NewRecorder()
	server.blocksHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
