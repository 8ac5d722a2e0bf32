package repository

import (
	"strings"

	"go-stockyng/internal/model"
)

// RoleRepository exposes the fixed role catalog.
type RoleRepository interface {
	FindAll() []model.Role
	FindByCode(code string) (*model.Role, error)
}

type roleRepo struct {
	roles []model.Role
}

func NewRoleRepo() RoleRepository {
	return &roleRepo{roles: model.DefaultRoles}
}

func (r *roleRepo) FindAll() []model.Role {
	out := make([]model.Role, len(r.roles))
	copy(out, r.roles)
	return out
}

// FindByCode matches codes case-insensitively.
func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	for i := range r.roles {
		if strings.EqualFold(strings.TrimSpace(code), r.roles[i].Code) {
			role := r.roles[i]
			return &role, nil
		}
	}
	return nil, model.ErrNotFound
}
