package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/server"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// LoginRedirect builds /login?redirectTo=<target>.
func LoginRedirect(target string) string {
	return LoginPath + "?" + url.Values{"redirectTo": {target}}.Encode()
}

// LoadSession records the session's user id when a valid cookie is present
// and lets every request through.
func (auth *AuthMiddleware) LoadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userID, err := auth.server.Sessions.UserID(c.Request()); err == nil {
			setUser(c, userID)
		}
		return next(c)
	}
}

// RequireAuth sends requests without a valid session to the login page,
// remembering where they were headed.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.server.Sessions.UserID(c.Request())
		if err != nil {
			GetLogger(c).Debug().
				Err(err).
				Str("function", "RequireAuth").
				Msg("no valid session, redirecting to login")

			return c.Redirect(http.StatusFound, LoginRedirect(c.Request().URL.RequestURI()))
		}

		setUser(c, userID)
		return next(c)
	}
}

// setUser stores the user id and adds it to the request logger.
func setUser(c echo.Context, userID string) {
	c.Set(UserIDKey, userID)

	logger := GetLogger(c).With().Str("user_id", userID).Logger()
	c.Set(LoggerKey, &logger)
	c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))
}
