package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/mailer"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// OTPStore issues and verifies one-time passwords for the reset flow.
// Satisfied by auth.OTPStore.
type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

type Service struct {
	users     UserRepository
	otp       OTPStore
	mail      mailer.EmailSender
	templates *mailer.TemplateEngine
	tokens    auth.TokenConfig
	otpTTLMin int
	log       zerolog.Logger
}

func NewService(users UserRepository, otp OTPStore, mail mailer.EmailSender,
	templates *mailer.TemplateEngine, tokens auth.TokenConfig, otpTTLMin int, log zerolog.Logger) *Service {
	return &Service{
		users:     users,
		otp:       otp,
		mail:      mail,
		templates: templates,
		tokens:    tokens,
		otpTTLMin: otpTTLMin,
		log:       log,
	}
}

// Signup registers a patient account and returns the profile with a fresh
// token.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     auth.RolePatient,
		Phone:        req.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := auth.IssueToken(s.tokens, u.ID, u.UserType)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.tokens, u.ID, u.UserType)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Profile returns the actor's own account.
func (s *Service) Profile(ctx context.Context, actor auth.Actor) (*User, error) {
	return s.users.GetByID(ctx, actor.ID)
}

// UpdateProfile applies partial changes to the actor's account.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, req UpdateProfileRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		u.Name = name
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.ProfilePhoto != nil {
		u.ProfilePhoto = req.ProfilePhoto
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *Service) ChangePassword(ctx context.Context, actor auth.Actor, req ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return fmt.Errorf("old_password, new_password and confirm_password are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

// ForgotPassword issues an OTP for the email and mails it. Unknown emails
// return ErrUserNotFound; the handler decides what to reveal to the caller.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(ctx, u.Email)
	if err != nil {
		return err
	}

	subject, body, err := s.templates.Render("password-reset-otp", map[string]string{
		"name":        u.Name,
		"otp":         code,
		"ttl_minutes": strconv.Itoa(s.otpTTLMin),
	})
	if err != nil {
		return err
	}
	if err := s.mail.SendEmail(ctx, u.Email, subject, body); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// ResetPassword consumes a valid OTP and sets the new password, then sends a
// confirmation mail. The confirmation is best effort.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return fmt.Errorf("email, otp and new_password are required")
	}
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	ok, err := s.otp.Verify(ctx, u.Email, req.OTP)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	subject, body, err := s.templates.Render("password-reset-confirmation", map[string]string{"name": u.Name})
	if err == nil {
		if err := s.mail.SendEmail(ctx, u.Email, subject, body); err != nil {
			s.log.Warn().Err(err).Str("email", u.Email).Msg("reset confirmation mail failed")
		}
	}
	return nil
}
