// Package session issues and reads the signed cookie that identifies a
// logged-in user. The cookie value is an HS256 JWT whose subject is the user
// id.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the only cookie the service sets.
const CookieName = "storymap_session"

// ErrNoSession is returned when the request carries no usable session.
var ErrNoSession = errors.New("session: not authenticated")

type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue signs a session for userID and returns the cookie carrying it.
func (m *Manager) Issue(userID string) (*http.Cookie, error) {
	now := m.now()
	expires := now.Add(m.maxAge)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return m.cookie(signed, int(m.maxAge.Seconds()), expires), nil
}

// Clear returns a cookie that removes the session from the browser.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1, time.Unix(0, 0))
}

// UserID verifies the session cookie on r and returns its subject.
func (m *Manager) UserID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}
	return m.Verify(c.Value)
}

// Verify checks a signed session value.
func (m *Manager) Verify(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.Subject == "" {
		return "", ErrNoSession
	}
	return claims.Subject, nil
}
