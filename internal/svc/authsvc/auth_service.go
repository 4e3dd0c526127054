package authsvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
	"github.com/mkrupp/skillsphere/internal/util/validation"
)

const (
	loginPath  = "/api/auth/login"
	signupPath = "/api/auth/signup"
)

// Toast messages for the login and signup pages.
const (
	MsgLoginSuccess  = "Login successful!"
	MsgSignupSuccess = "Your account has been created successfully."
	MsgLoginFailed   = "Login failed. Please try again."
	MsgSignupFailed  = "An error occurred during registration."
)

// AuthService logs users in and out of a browser session.
type AuthService interface {
	// Login authenticates against the backend and persists the issued token
	// for the session. Invalid input fails with domain.ValidationErrors before
	// any network call.
	Login(ctx context.Context, sessionID string, req domain.LoginRequest) (domain.AuthResponse, error)

	// Register creates an account and persists the issued token for the session.
	Register(ctx context.Context, sessionID string, req domain.SignupRequest) (domain.AuthResponse, error)

	// Logout clears the session's token without calling the backend.
	Logout(ctx context.Context, sessionID string) error
}

// APIAuthService implements AuthService against the REST backend.
type APIAuthService struct {
	API      apiclient.Client
	Sessions sessionsvc.SessionService
	Validate *validator.Validate
	Log      logging.Logger
}

var _ AuthService = (*APIAuthService)(nil)

// NewAPIAuthService creates a new APIAuthService.
func NewAPIAuthService(api apiclient.Client, sessions sessionsvc.SessionService) *APIAuthService {
	return &APIAuthService{
		API:      api,
		Sessions: sessions,
		Validate: NewValidator(),
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Login implements AuthService.Login.
func (s *APIAuthService) Login(
	ctx context.Context,
	sessionID string,
	req domain.LoginRequest,
) (resp domain.AuthResponse, err error) {
	req.Email = strings.TrimSpace(req.Email)

	log := s.Log.With(logging.Group("user", "email", req.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	if err := validation.Struct(ctx, s.Validate, req, loginMessages); err != nil {
		return domain.AuthResponse{}, err
	}

	return s.authenticate(ctx, sessionID, loginPath, req)
}

// Register implements AuthService.Register.
func (s *APIAuthService) Register(
	ctx context.Context,
	sessionID string,
	req domain.SignupRequest,
) (resp domain.AuthResponse, err error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Company = strings.TrimSpace(req.Company)
	req.Skills = domain.NormalizeSkills(req.Skills)

	log := s.Log.With(logging.Group("user", "email", req.Email, "role", req.Role))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if err := validation.Struct(ctx, s.Validate, req, signupMessages); err != nil {
		return domain.AuthResponse{}, err
	}

	return s.authenticate(ctx, sessionID, signupPath, req.Trim())
}

func (s *APIAuthService) authenticate(
	ctx context.Context,
	sessionID, path string,
	body any,
) (domain.AuthResponse, error) {
	var resp domain.AuthResponse

	if err := s.API.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	}, &resp); err != nil {
		return domain.AuthResponse{}, fmt.Errorf("post %s: %w", path, err)
	}

	if resp.Token == "" {
		return domain.AuthResponse{}, fmt.Errorf("post %s: %w", path, domain.ErrNoToken)
	}

	if err := s.Sessions.Establish(ctx, sessionID, resp.Token); err != nil {
		return domain.AuthResponse{}, fmt.Errorf("establish session: %w", err)
	}

	return resp, nil
}

// Logout implements AuthService.Logout.
func (s *APIAuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.Sessions.Logout(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}
