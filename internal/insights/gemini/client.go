// Package gemini implements a text-generation client with a fallback
// chain across model candidates. When a model is quota-exhausted,
// retired, or times out, the next candidate is tried transparently.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/config"
)

var (
	// ErrAPIKeyMissing is returned when no API key is configured.
	ErrAPIKeyMissing = errors.New("gemini API key not configured")
	// ErrQuotaExhausted is returned when a model's quota is used up.
	ErrQuotaExhausted = errors.New("gemini model quota exhausted")
	// ErrModelNotFound is returned when a model name is unknown or retired.
	ErrModelNotFound = errors.New("gemini model not found")
	// ErrAllModelsExhausted is returned when every candidate failed.
	ErrAllModelsExhausted = errors.New("all gemini model candidates exhausted")
	// ErrEmptyResponse is returned when a model answers without content.
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// defaultModels is the candidate order when the config names none.
var defaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-flash-latest",
	"gemini-pro-latest",
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client calls the Gemini generateContent API.
type Client struct {
	httpClient *http.Client
	config     config.GeneratorConfig
	models     []string
	logger     zerolog.Logger
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.GeneratorConfig, logger zerolog.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 45 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	models := cfg.Models
	if len(models) == 0 {
		models = defaultModels
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		models:     models,
		logger:     logger.With().Str("component", "gemini").Logger(),
	}
}

// IsConfigured returns true when an API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Models returns the candidate chain in trial order.
func (c *Client) Models() []string {
	return c.models
}

// Generate sends a prompt down the candidate chain and returns the
// first model's text output. Quota exhaustion, unknown models, and
// timeouts advance to the next candidate; any other failure is
// returned immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrAPIKeyMissing
	}

	requestID := uuid.New().String()

	for _, model := range c.models {
		text, err := c.generateWith(ctx, model, prompt)
		if err == nil {
			c.logger.Debug().
				Str("requestID", requestID).
				Str("model", model).
				Msg("Generation succeeded")
			return text, nil
		}

		if errors.Is(err, ErrQuotaExhausted) || errors.Is(err, ErrModelNotFound) || isTimeout(err) {
			c.logger.Warn().
				Err(err).
				Str("requestID", requestID).
				Str("model", model).
				Msg("Model candidate failed, trying next")
			continue
		}

		return "", fmt.Errorf("model %s: %w", model, err)
	}

	return "", ErrAllModelsExhausted
}

func (c *Client) generateWith(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.config.BaseURL, model, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, data)
	}

	var result generateResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func classifyStatus(status int, data []byte) error {
	var apiErr errorResponse
	message := ""
	if json.Unmarshal(data, &apiErr) == nil {
		message = apiErr.Error.Message
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrQuotaExhausted, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, message)
	default:
		return fmt.Errorf("gemini API error (status %d): %s", status, message)
	}
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
