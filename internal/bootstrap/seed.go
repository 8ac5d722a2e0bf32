package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/pkg/hasher"
)

// SeedAdmin creates the first admin when no admin exists yet. It does nothing
// unless both email and password are given.
func SeedAdmin(ctx context.Context, users repository.UserRepository, h hasher.CredentialHasher, email, password string, log zerolog.Logger) error {
	if email == "" || password == "" {
		return nil
	}

	all, err := users.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if model.IsAdmin(all[i].Role) {
			return nil
		}
	}

	admin := &model.User{
		Name:     "Administrator",
		Email:    email,
		Username: "admin",
		Role:     model.RoleAdmin,
	}
	if err := admin.SetPassword(h, password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", email).Str("user_id", admin.ID).Msg("admin user created")
	return nil
}
