// Package vision implements the HTTP client for an external vision-language
// backend. The backend is a black box that receives an image and returns a
// textual payload; parsing that payload into regions happens upstream in the
// region package.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultPrompt instructs the backend to emit the chart payload schema the
// region package parses.
const DefaultPrompt = `Analyze this image and identify any charts, graphs, diagrams or figures.
For each visual element found, report its location as percentages of the image dimensions.
Make the bounding box generous so no content is cut off.

Return ONLY valid JSON in this exact format:
{"charts": [{"type": "chart_type", "description": "brief description",
"coordinates": {"x1": 10, "y1": 20, "x2": 60, "y2": 50}}]}

Where x1,y1 is the top-left corner and x2,y2 the bottom-right corner, each in 0-100% of
the image width/height. If no charts are found, return: {"charts": []}`

// Config holds vision backend client settings.
type Config struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	Model     string        `mapstructure:"model" yaml:"model" json:"model"`
	Prompt    string        `mapstructure:"prompt" yaml:"prompt" json:"prompt"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns client defaults. The API key has no default and must
// be supplied via configuration or environment.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o",
		Prompt:    DefaultPrompt,
		MaxTokens: 1000,
		Timeout:   60 * time.Second,
	}
}

// Client calls a chat-completions style vision endpoint. It satisfies
// region.TextBackend.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client from config. A missing API key is reported here
// so callers can degrade before attempting network calls.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("vision: empty base URL")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("vision: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Request/response wire types for the chat completions endpoint.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DescribeRegions sends the image to the backend and returns the raw text of
// its reply. The caller is responsible for parsing and for degrading on
// failure.
func (c *Client) DescribeRegions(ctx context.Context, img image.Image) (string, error) {
	dataURI, err := encodeDataURI(img)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: c.cfg.Prompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURI}},
			},
		}},
		MaxTokens: c.cfg.MaxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("vision: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("vision: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision: backend call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("vision: backend returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("vision: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("vision: backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// encodeDataURI renders the image as a JPEG data URI for transport.
func encodeDataURI(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("vision: nil image")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("vision: encoding image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
