package identity

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the open auth endpoints; authed takes the profile
// endpoints guarded by the JWT middleware.
func (h *Handler) RegisterRoutes(open *echo.Group, authed *echo.Group) {
	open.POST("/signup", h.Signup)
	open.POST("/login", h.Login)
	open.POST("/forgot-password", h.ForgotPassword)
	open.POST("/reset-password", h.ResetPassword)

	authed.GET("/profile", h.Profile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PUT("/change-password", h.ChangePassword)
}

func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	result, err := h.svc.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return respond.Fail(c, "Email already registered")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Signup successful", result)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	result, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return respond.Fail(c, "Invalid email or password")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Login successful", result)
}

func (h *Handler) Profile(c echo.Context) error {
	u, err := h.svc.Profile(c.Request().Context(), auth.MustActor(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.Fail(c, "User not found")
		}
		return respond.Err(c, "Failed to fetch profile", err)
	}
	return respond.OK(c, "Profile fetched successfully", u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	u, err := h.svc.UpdateProfile(c.Request().Context(), auth.MustActor(c), req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.Fail(c, "User not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Profile updated successfully", u)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	if err := h.svc.ChangePassword(c.Request().Context(), auth.MustActor(c), req); err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			return respond.Fail(c, "New password and confirm password do not match")
		case errors.Is(err, ErrInvalidCredentials):
			return respond.Fail(c, "Old password is incorrect")
		default:
			return respond.Fail(c, err.Error())
		}
	}
	return respond.OK(c, "Password changed successfully", nil)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.Fail(c, "No account found with this email")
		}
		return respond.Err(c, "Failed to send reset code", err)
	}
	return respond.OK(c, "Password reset code sent to your email", nil)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	if err := h.svc.ResetPassword(c.Request().Context(), req); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return respond.Fail(c, "No account found with this email")
		case errors.Is(err, ErrInvalidOTP):
			return respond.Fail(c, "Invalid or expired OTP")
		default:
			return respond.Fail(c, err.Error())
		}
	}
	return respond.OK(c, "Password reset successfully", nil)
}
