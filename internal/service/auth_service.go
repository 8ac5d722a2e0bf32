package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/pkg/hasher"
	"go-stockyng/pkg/validator"
)

// Screens a client lands on after authenticating.
const (
	RouteAdmin    = "admin"
	RouteStandard = "standard"
)

// SessionSink receives the identity after login, registration and profile
// edits, and is torn down on logout. session.Session implements it.
type SessionSink interface {
	Refresh(ctx context.Context, s model.Session) error
	Teardown(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req *RegisterRequest) (*LoginResult, error)
	Logout(ctx context.Context) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"notblank"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginResult carries the new session and where the client should go next.
// Route is RouteAdmin for admins, otherwise RouteStandard with the username
// available on Session.
type LoginResult struct {
	Session    model.Session      `json:"session"`
	User       model.UserResponse `json:"user"`
	Role       string             `json:"role"`
	Route      string             `json:"route"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	hasher   hasher.CredentialHasher
	sink     SessionSink
	logger   zerolog.Logger
}

// NewAuthService wires the auth flows. sink may be nil when the caller keeps
// no local session, as the HTTP API does.
func NewAuthService(userRepo repository.UserRepository, h hasher.CredentialHasher, sink SessionSink, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   h,
		sink:     sink,
		logger:   logger,
	}
}

// Login reads the whole users collection once and picks the first record,
// in key order, whose email matches and whose digest verifies.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("login: fetch users")
		return nil, err
	}

	for i := range users {
		u := &users[i]
		if u.Email != req.Email || !u.CheckPassword(s.hasher, req.Password) {
			continue
		}
		result := newLoginResult(u)
		if err := s.refresh(ctx, result.Session); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", u.ID).Str("route", result.Route).Msg("login")
		return result, nil
	}
	return nil, model.ErrInvalidCredentials
}

// Register creates a regular user. The username check and the insert are not
// atomic, so two concurrent registrations can both succeed.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*LoginResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	req.ConfirmPassword = strings.TrimSpace(req.ConfirmPassword)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, model.ErrUsernameTaken
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Role:     model.RoleUser,
	}
	if err := user.SetPassword(s.hasher, req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("register: create user")
		return nil, err
	}

	result := newLoginResult(user)
	if err := s.refresh(ctx, result.Session); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("registered")
	return result, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Teardown(ctx)
}

func (s *authService) refresh(ctx context.Context, sess model.Session) error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Refresh(ctx, sess)
}

func newLoginResult(u *model.User) *LoginResult {
	route := RouteStandard
	if model.IsAdmin(u.Role) {
		route = RouteAdmin
	}
	return &LoginResult{
		Session:    u.ToSession(),
		User:       u.ToResponse(),
		Role:       u.Role,
		Route:      route,
		Privileges: model.PrivilegesFor(u.Role),
	}
}
