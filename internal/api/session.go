package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/identity"
	"github.com/eastboundjoe/aviation-study-guide/internal/persist"
)

// maxSpeechChars caps a single synthesis request.
const maxSpeechChars = 5000

type signInRequest struct {
	Identity string `json:"identity"`
}

type sessionResponse struct {
	Identity      string                   `json:"identity"`
	Guest         bool                     `json:"guest"`
	RemoteEnabled bool                     `json:"remoteEnabled"`
	SyncStatus    persist.SyncStatus       `json:"syncStatus"`
	Migration     *persist.MigrationResult `json:"migration,omitempty"`
}

type speakRequest struct {
	Text string `json:"text"`
}

// GetSession reports who the request is acting as.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, sessionResponse{
		Identity:      l.Identity,
		Guest:         l.Identity == "",
		RemoteEnabled: h.learners.Adapter().RemoteEnabled(),
		SyncStatus:    l.SyncStatus(),
	})
}

// SignIn sets the identity cookie and moves any guest progress on this
// device into the account.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	id := strings.TrimSpace(req.Identity)
	if err := h.identity.SignIn(w, r, id); err != nil {
		if errors.Is(err, identity.ErrEmptyIdentity) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("sign in failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "could not sign in")
		return
	}

	ctx := r.Context()
	res, migrateErr := h.learners.Migrate(ctx, id)
	if migrateErr != nil {
		// The account still loads; the attempt can be retried.
		h.logger.Warn("local progress migration failed", zap.String("identity", id), zap.Error(migrateErr))
	}

	l, err := h.learners.Get(ctx, id)
	if err != nil {
		h.logger.Error("load learner failed", zap.String("identity", id), zap.Error(err))
		Error(w, http.StatusInternalServerError, "could not load progress")
		return
	}

	out := sessionResponse{
		Identity:      id,
		RemoteEnabled: h.learners.Adapter().RemoteEnabled(),
		SyncStatus:    l.SyncStatus(),
	}
	if migrateErr == nil {
		out.Migration = &res
	}
	JSON(w, http.StatusOK, out)
}

// SignOut clears the identity cookie. Later requests act as the guest.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.SignOut(w, r); err != nil {
		h.logger.Error("sign out failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "could not sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Speak returns MP3 audio for text, or 204 when speech is unavailable so
// the client can continue silently.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(text) > maxSpeechChars {
		Error(w, http.StatusRequestEntityTooLarge, "text is too long")
		return
	}

	audio := h.speech.SpeakOrSilence(r.Context(), text)
	if len(audio) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.logger.Debug("write audio failed", zap.Error(err))
	}
}
