// Package identity carries the signed-in learner's opaque identity in a
// signed cookie. An empty identity is a guest.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "studyguide"
	identityKey = "identity"
	maxAge      = 86400 * 30
)

var ErrEmptyIdentity = errors.New("identity must not be empty")

type ctxKey struct{}

// Provider reads and writes the identity cookie.
type Provider struct {
	store *sessions.CookieStore
}

// NewProvider creates a provider signing cookies with key. Secure should be
// true when served over HTTPS.
func NewProvider(key []byte, secure bool) *Provider {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Provider{store: store}
}

// Current returns the identity in the request cookie, or "" for a guest.
// A cookie that fails verification is treated as a guest.
func (p *Provider) Current(r *http.Request) string {
	session, err := p.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	id, _ := session.Values[identityKey].(string)
	return id
}

// SignIn stores id in the session cookie.
func (p *Provider) SignIn(w http.ResponseWriter, r *http.Request, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyIdentity
	}
	// A stale or tampered cookie still yields a fresh session to write into.
	session, _ := p.store.Get(r, sessionName)
	session.Values[identityKey] = id
	return session.Save(r, w)
}

// SignOut expires the session cookie.
func (p *Provider) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := p.store.Get(r, sessionName)
	delete(session.Values, identityKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Middleware puts the request's identity into its context.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), p.Current(r))))
	})
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by Middleware, or "" for a guest.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
