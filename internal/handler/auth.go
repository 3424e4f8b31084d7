package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/lib/utils"
	"github.com/javaniecampbell/storymap/internal/middleware"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/validation"
)

// DefaultRedirect is where a login lands without a redirectTo.
const DefaultRedirect = "/dashboard"

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

type LoginPageRequest struct {
	RedirectTo string `query:"redirectTo"`
}

func (r *LoginPageRequest) Validate() error { return nil }

type LoginPageResponse struct {
	Authenticated bool   `json:"authenticated"`
	RedirectTo    string `json:"redirectTo"`
}

type LoginRequest struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required"`
	RedirectTo string `form:"redirectTo"`
}

func (r *LoginRequest) Validate() error { return validation.Struct(r) }

type RegisterRequest struct {
	Email      string `form:"email" validate:"required,email,max=254"`
	Password   string `form:"password" validate:"required,min=8,max=128"`
	RedirectTo string `form:"redirectTo"`
}

func (r *RegisterRequest) Validate() error { return validation.Struct(r) }

func (h *AuthHandler) LoginPage() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *LoginPageRequest) (LoginPageResponse, error) {
		return LoginPageResponse{
			Authenticated: middleware.GetUserID(c) != "",
			RedirectTo:    utils.SafeRedirect(req.RedirectTo, DefaultRedirect),
		}, nil
	}, http.StatusOK)
}

// startSession sets the session cookie for userID.
func (h *AuthHandler) startSession(c echo.Context, userID string) error {
	cookie, err := h.server.Sessions.Issue(userID)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return nil
}

func (h *AuthHandler) Login() echo.HandlerFunc {
	return HandleRedirect(h.Handler, func(c echo.Context, req *LoginRequest) (string, error) {
		user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return "", err
		}
		if err := h.startSession(c, user.ID); err != nil {
			return "", err
		}
		return utils.SafeRedirect(req.RedirectTo, DefaultRedirect), nil
	}, http.StatusSeeOther)
}

func (h *AuthHandler) Register() echo.HandlerFunc {
	return HandleRedirect(h.Handler, func(c echo.Context, req *RegisterRequest) (string, error) {
		user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return "", err
		}
		if err := h.startSession(c, user.ID); err != nil {
			return "", err
		}
		return utils.SafeRedirect(req.RedirectTo, DefaultRedirect), nil
	}, http.StatusSeeOther)
}

func (h *AuthHandler) Logout() echo.HandlerFunc {
	return HandleRedirect(h.Handler, func(c echo.Context, _ *emptyRequest) (string, error) {
		c.SetCookie(h.server.Sessions.Clear())
		return "/", nil
	}, http.StatusSeeOther)
}
