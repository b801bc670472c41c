package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var mp3 = []byte("ID3\x03\x00fake-mp3")

type tts struct {
	mu     sync.Mutex
	paths  []string
	keys   []string
	bodies []map[string]any
	reply  func(w http.ResponseWriter, r *http.Request)
}

func (s *tts) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.keys = append(s.keys, r.Header.Get("X-Goog-Api-Key"))
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	s.reply(w, r)
}

func audioReply(w http.ResponseWriter, _ *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{"audioContent": base64.StdEncoding.EncodeToString(mp3)})
}

func errorReply(status int, msg string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
	}
}

func newTestClient(t *testing.T, srv *tts, logger *zap.Logger) *Client {
	t.Helper()
	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 0
	return NewClient(cfg, logger)
}

func TestSynthesize_FirstEndpoint(t *testing.T) {
	srv := &tts{reply: audioReply}
	c := newTestClient(t, srv, nil)

	audio, err := c.Synthesize(context.Background(), "Cleared for takeoff.")
	require.NoError(t, err)
	assert.Equal(t, mp3, audio)

	require.Len(t, srv.paths, 1)
	assert.Equal(t, "/v1beta1/text:synthesize", srv.paths[0])
	assert.Equal(t, "test-key", srv.keys[0])

	body := srv.bodies[0]
	assert.Equal(t, "Cleared for takeoff.", body["input"].(map[string]any)["text"])
	voice := body["voice"].(map[string]any)
	assert.Equal(t, "en-US", voice["languageCode"])
	assert.Equal(t, "en-US-Journey-F", voice["name"])
	audioCfg := body["audioConfig"].(map[string]any)
	assert.Equal(t, "MP3", audioCfg["audioEncoding"])
	assert.Equal(t, 1.0, audioCfg["speakingRate"])
	assert.Equal(t, 0.0, audioCfg["pitch"])
}

func TestSynthesize_FallsBackToV1(t *testing.T) {
	srv := &tts{}
	srv.reply = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1beta1/text:synthesize" {
			errorReply(http.StatusNotFound, "voice not available in v1beta1")(w, r)
			return
		}
		audioReply(w, r)
	}
	c := newTestClient(t, srv, nil)

	audio, err := c.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, mp3, audio)
	assert.Equal(t, []string{"/v1beta1/text:synthesize", "/v1/text:synthesize"}, srv.paths)
}

func TestSynthesize_LastErrorWins(t *testing.T) {
	srv := &tts{}
	srv.reply = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1beta1/text:synthesize" {
			errorReply(http.StatusBadRequest, "first failure")(w, r)
			return
		}
		errorReply(http.StatusInternalServerError, "second failure")(w, r)
	}
	c := newTestClient(t, srv, nil)

	_, err := c.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second failure")
	assert.NotContains(t, err.Error(), "first failure")
	assert.False(t, errors.Is(err, ErrKeyRestricted))
}

func TestSynthesize_KeyRestricted(t *testing.T) {
	srv := &tts{reply: errorReply(http.StatusForbidden,
		"Requests to this API texttospeech.googleapis.com method are blocked.")}
	c := newTestClient(t, srv, nil)

	_, err := c.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrKeyRestricted)
	assert.Len(t, srv.paths, 2)
}

func TestSynthesize_NonJSONBody(t *testing.T) {
	srv := &tts{reply: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}}
	c := newTestClient(t, srv, nil)

	_, err := c.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502: upstream down")
}

func TestSynthesize_NoAPIKey(t *testing.T) {
	c := NewClient(DefaultConfig(), nil)
	assert.False(t, c.Enabled())
	_, err := c.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSynthesize_EmptyText(t *testing.T) {
	srv := &tts{reply: audioReply}
	c := newTestClient(t, srv, nil)

	audio, err := c.Synthesize(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Nil(t, audio)
	assert.Empty(t, srv.paths)
}

func TestSynthesize_CanceledContext(t *testing.T) {
	srv := &tts{reply: audioReply}
	c := newTestClient(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Synthesize(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpeakOrSilence(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	srv := &tts{reply: errorReply(http.StatusForbidden, "blocked")}
	c := newTestClient(t, srv, zap.New(core))

	assert.Nil(t, c.SpeakOrSilence(context.Background(), "hello"))
	assert.Equal(t, 1, logs.FilterMessage("speech unavailable").Len())

	var nilClient *Client
	assert.Nil(t, nilClient.SpeakOrSilence(context.Background(), "hello"))
}

func TestSynthesize_RateLimited(t *testing.T) {
	srv := &tts{reply: audioReply}
	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "k"
	cfg.BaseURL = server.URL
	cfg.RequestsPerSecond = 20
	c := NewClient(cfg, nil)

	start := time.Now()
	for range 3 {
		_, err := c.Synthesize(context.Background(), "hi")
		require.NoError(t, err)
	}
	// Burst of one: the second and third calls each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
