package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"go-stockyng/internal/collection"
	"go-stockyng/internal/model"
	"go-stockyng/internal/objectstore"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/search"
	"go-stockyng/pkg/hasher"
	"go-stockyng/pkg/validator"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
	LiveUsers(ctx context.Context) (*collection.Subscription[model.User], error)
	UpdateProfile(ctx context.Context, current model.Session, req *ProfileRequest, img *Image) (*model.Session, error)
}

type CreateUserRequest struct {
	Name     string `json:"name" form:"name" validate:"notblank"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Role     string `json:"role" form:"role" validate:"notblank"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" form:"name" validate:"notblank"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"username" form:"username" validate:"notblank"`
	Role     string `json:"role" form:"role" validate:"notblank"`
}

// ProfileRequest is the self-service edit form. A blank NewPassword keeps
// the current one.
type ProfileRequest struct {
	Name               string `json:"name" form:"name" validate:"notblank"`
	Email              string `json:"email" form:"email" validate:"required,email"`
	Username           string `json:"username" form:"username" validate:"notblank"`
	NewPassword        string `json:"newPassword" form:"newPassword" validate:"omitempty,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" form:"confirmNewPassword" validate:"eqfield=NewPassword"`
}

type userService struct {
	userRepo repository.UserRepository
	hasher   hasher.CredentialHasher
	images   objectstore.Store
	sink     SessionSink
	logger   zerolog.Logger
}

// NewUserService wires user management. sink may be nil.
func NewUserService(userRepo repository.UserRepository, h hasher.CredentialHasher, images objectstore.Store, sink SessionSink, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   h,
		images:   images,
		sink:     sink,
		logger:   logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	trim(&req.Name, &req.Email, &req.Username, &req.Role)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkUsername(ctx, req.Username, ""); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Role:     model.NormalizeRole(req.Role),
	}
	if err := user.SetPassword(s.hasher, req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("create user")
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user created")
	return user, nil
}

// UpdateUser rewrites the identity fields and keeps the stored digest and
// picture.
func (s *userService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*model.User, error) {
	trim(&req.Name, &req.Email, &req.Username, &req.Role)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Username, req.Username) {
		if err := s.checkUsername(ctx, req.Username, id); err != nil {
			return nil, err
		}
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Username = req.Username
	user.Role = model.NormalizeRole(req.Role)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("update user")
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("delete user")
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.FindAll(ctx)
}

// SearchUsers matches on name, email or username.
func (s *userService) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(users, query, UserSearchFields), nil
}

func (s *userService) LiveUsers(ctx context.Context) (*collection.Subscription[model.User], error) {
	return s.userRepo.Live(ctx)
}

// UpdateProfile patches the caller's own record. The optional picture is
// uploaded first; if that fails the rest is still saved with the previous
// picture and model.ErrImageUploadFailed is returned next to the new session.
func (s *userService) UpdateProfile(ctx context.Context, current model.Session, req *ProfileRequest, img *Image) (*model.Session, error) {
	if !current.Complete() {
		return nil, model.ErrUnauthenticated
	}
	trim(&req.Name, &req.Email, &req.Username, &req.NewPassword, &req.ConfirmNewPassword)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	// Patch upserts, so a deleted identity must not be written back.
	stored, err := s.userRepo.FindByID(ctx, current.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(stored.Username, req.Username) {
		if err := s.checkUsername(ctx, req.Username, current.UserID); err != nil {
			return nil, err
		}
	}

	imageURL := stored.ImageURL
	var imgErr error
	if img != nil {
		url, err := upload(ctx, s.images, objectstore.ProfileImagePath(current.UserID), img)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", current.UserID).Msg("profile image")
			imgErr = err
		} else {
			imageURL = url
		}
	}

	fields := map[string]any{
		"name":     req.Name,
		"email":    req.Email,
		"username": req.Username,
		"imageUrl": imageURL,
	}
	if req.NewPassword != "" {
		digest, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = digest
	}
	if err := s.userRepo.Patch(ctx, current.UserID, fields); err != nil {
		s.logger.Error().Err(err).Str("user_id", current.UserID).Msg("update profile")
		return nil, err
	}

	updated := stored.ToSession()
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Username = req.Username
	updated.ImageURL = imageURL
	if s.sink != nil {
		if err := s.sink.Refresh(ctx, updated); err != nil {
			return nil, err
		}
	}
	return &updated, imgErr
}

// checkUsername fails with model.ErrUsernameTaken when another record than
// self already uses username. Advisory only: there is no lock between the
// check and the write.
func (s *userService) checkUsername(ctx context.Context, username, self string) error {
	taken, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	for _, u := range taken {
		if u.ID != self {
			return model.ErrUsernameTaken
		}
	}
	return nil
}

// UserSearchFields selects the text a user query matches against.
func UserSearchFields(u model.User) []string { return []string{u.Name, u.Email, u.Username} }
