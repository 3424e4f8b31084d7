package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestIssueAndRead(t *testing.T) {
	m := NewManager(secret, 30*24*time.Hour, true)

	c, err := m.Issue("user-1")
	require.NoError(t, err)

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 30*24*60*60, c.MaxAge)

	userID, err := m.UserID(requestWith(c))
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestUserIDRejects(t *testing.T) {
	m := NewManager(secret, time.Hour, false)

	_, err := m.UserID(requestWith(nil))
	assert.ErrorIs(t, err, ErrNoSession)

	other := NewManager("another-secret-another-secret-xx", time.Hour, false)
	forged, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = m.UserID(requestWith(forged))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSession(t *testing.T) {
	m := NewManager(secret, time.Hour, false)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	c, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.UserID(requestWith(c))
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	m := NewManager(secret, time.Hour, false)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClear(t *testing.T) {
	c := NewManager(secret, time.Hour, false).Clear()
	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}
