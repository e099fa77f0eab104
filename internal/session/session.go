// Package session keeps the logged-in identity in a signed cookie.
//
// The identity is an HS256 JWT whose subject is the username. Nothing is
// stored server-side, so a restart does not log anyone out while the token
// is still valid. There is no logout: a new login overwrites the cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "expense_session"
	DefaultTTL        = 12 * time.Hour
)

var ErrNoIdentity = errors.New("no session identity")

type ctxKey struct{}

// Manager issues and reads session cookies.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

type Option func(*Manager)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the cookie Secure, for deployments behind HTTPS.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, ttl time.Duration, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: DefaultCookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Login sets the identity cookie for username, replacing any previous one.
func (m *Manager) Login(w http.ResponseWriter, username string) error {
	token, err := m.issue(username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the identity placed in ctx by Middleware.
func Current(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxKey{}).(string)
	return username, ok
}

// WithUser returns a context carrying username as the session identity.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// Identify reads the identity from the request cookie.
func (m *Manager) Identify(r *http.Request) (string, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", ErrNoIdentity
	}
	return m.parse(c.Value)
}

// Middleware resolves the cookie into the request context. Requests without
// a valid cookie pass through anonymously.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username, err := m.Identify(r); err == nil {
			r = r.WithContext(WithUser(r.Context(), username))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser lets identified requests through and sends the rest to unauthorized.
func RequireUser(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := Current(r.Context()); !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Manager) issue(username string) (string, error) {
	const op = "session.issue"
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

func (m *Manager) parse(tokenStr string) (string, error) {
	const op = "session.parse"
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(_ *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrNoIdentity)
	}
	// An empty subject is still an identity: the stores accept empty usernames.
	return claims.Subject, nil
}
