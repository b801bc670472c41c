// Package api provides the HTTP surface of the study guide: progress,
// study material, checkpoint and quiz grading, speech and sign-in.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/identity"
	"github.com/eastboundjoe/aviation-study-guide/internal/learner"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
	"github.com/eastboundjoe/aviation-study-guide/internal/speech"
)

// maxBodyBytes bounds request bodies. Transcripts are the largest input.
const maxBodyBytes = 64 << 10

// Deps are the collaborators a Handler needs. Grader and Speech may be nil.
type Deps struct {
	Learners *learner.Registry
	Catalog  *content.Catalog
	Identity *identity.Provider
	Grader   *recall.Grader
	Speech   *speech.Client
	Metrics  *Metrics
	Logger   *zap.Logger

	// Rand drives random review selection. Nil seeds from the clock.
	Rand *rand.Rand
}

// Handler serves the /api routes.
type Handler struct {
	learners *learner.Registry
	catalog  *content.Catalog
	identity *identity.Provider
	grader   *recall.Grader
	speech   *speech.Client
	metrics  *Metrics
	logger   *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = NewMetrics(d.Learners.PendingWrites)
	}
	rng := d.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Handler{
		learners: d.Learners,
		catalog:  d.Catalog,
		identity: d.Identity,
		grader:   d.Grader,
		speech:   d.Speech,
		metrics:  metrics,
		logger:   logger.Named("api"),
		rand:     rng,
	}
}

// Metrics returns the handler's collectors.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// Router builds the full server handler: middleware, /api, /metrics and
// /health.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.metrics.Middleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(h.identity.Middleware)

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", h.GetProgress)
		r.Post("/outcomes", h.RecordOutcome)
		r.Get("/stats", h.GetStats)
		r.Get("/schedule", h.GetSchedule)
		r.Get("/calendar", h.GetCalendar)

		r.Get("/books", h.ListBooks)
		r.Get("/books/{book}", h.GetBook)
		r.Get("/review/random", h.RandomReview)

		r.Get("/quizzes/{book}/{chapter}", h.GetQuiz)
		r.Post("/quizzes/{book}/{chapter}", h.SubmitQuiz)

		r.Get("/checkpoints/{book}/{chapter}", h.GetCheckpoint)
		r.Post("/checkpoints/{book}/{chapter}/recall", h.GradeRecall)
		r.Post("/checkpoints/{book}/{chapter}/complete", h.CompleteCheckpoint)

		r.Post("/tts", h.Speak)

		r.Get("/session", h.GetSession)
		r.Post("/session", h.SignIn)
		r.Delete("/session", h.SignOut)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// current returns the learner of the request's identity, writing a 500 on
// failure.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*learner.Learner, bool) {
	id := identity.FromContext(r.Context())
	l, err := h.learners.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load learner failed", zap.String("identity", id), zap.Error(err))
		Error(w, http.StatusInternalServerError, "could not load progress")
		return nil, false
	}
	return l, true
}

// chapterKey reads {book} and {chapter} from the route.
func chapterKey(r *http.Request) (progress.Key, error) {
	book := pathParam(r, "book")
	ch, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		return progress.Key{}, fmt.Errorf("chapter must be a number")
	}
	k := progress.Key{Book: book, Chapter: ch}
	if !k.Valid() {
		return progress.Key{}, fmt.Errorf("invalid chapter %q", k)
	}
	return k, nil
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (h *Handler) randomCheckpoint() (content.Checkpoint, bool) {
	h.randMu.Lock()
	defer h.randMu.Unlock()
	return h.catalog.RandomCheckpoint(h.rand)
}
