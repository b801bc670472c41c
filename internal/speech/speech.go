// Package speech reads text aloud through the Google Cloud Text-to-Speech
// REST API.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNoAPIKey      = errors.New("text-to-speech API key is not configured")
	ErrKeyRestricted = errors.New("API key is blocking Text-to-Speech; check the key's API restrictions")
)

const DefaultBaseURL = "https://texttospeech.googleapis.com"

// Endpoint versions, tried in order.
var versions = []string{"v1beta1", "v1"}

// Config configures the client.
type Config struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
	Voice        string
	SpeakingRate float64

	// RequestsPerSecond caps outgoing requests. Zero disables the limit.
	RequestsPerSecond float64
	Timeout           time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		LanguageCode:      "en-US",
		Voice:             "en-US-Journey-F",
		SpeakingRate:      1.0,
		RequestsPerSecond: 2,
		Timeout:           15 * time.Second,
	}
}

// Client synthesizes MP3 audio.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("speech"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		Pitch         float64 `json:"pitch"`
		SpeakingRate  float64 `json:"speakingRate"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize returns MP3 audio for text. Each endpoint version is tried in
// turn; when all fail the last failure is reported, as ErrKeyRestricted if
// the key was blocked.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body, err := json.Marshal(c.buildRequest(text))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr string
	for _, v := range versions {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		audio, err := c.post(ctx, v, body)
		if err == nil {
			return audio, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err.Error()
		c.logger.Warn("tts endpoint failed", zap.String("version", v), zap.Error(err))
	}

	if strings.Contains(lastErr, "blocked") {
		return nil, fmt.Errorf("%w: %s", ErrKeyRestricted, lastErr)
	}
	return nil, fmt.Errorf("synthesize speech: %s", lastErr)
}

// SpeakOrSilence is Synthesize for callers that can carry on without audio.
// Failures are logged and yield nil.
func (c *Client) SpeakOrSilence(ctx context.Context, text string) []byte {
	audio, err := c.Synthesize(ctx, text)
	if err != nil {
		if c != nil {
			c.logger.Warn("speech unavailable", zap.Error(err))
		}
		return nil
	}
	return audio
}

func (c *Client) buildRequest(text string) synthesizeRequest {
	var r synthesizeRequest
	r.Input.Text = text
	r.Voice.LanguageCode = c.cfg.LanguageCode
	r.Voice.Name = c.cfg.Voice
	r.AudioConfig.AudioEncoding = "MP3"
	r.AudioConfig.SpeakingRate = c.cfg.SpeakingRate
	return r
}

func (c *Client) post(ctx context.Context, version string, body []byte) ([]byte, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + version + "/text:synthesize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out synthesizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out.AudioContent == "" {
		if out.Error != nil && out.Error.Message != "" {
			return nil, errors.New(out.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}
