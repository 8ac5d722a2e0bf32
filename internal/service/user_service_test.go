package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/model"
	"go-stockyng/internal/objectstore"
	"go-stockyng/pkg/hasher"
)

func newUsers(f *fixture, images objectstore.Store) UserService {
	return NewUserService(f.users, hasher.SHA256{}, images, f.session, zerolog.Nop())
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUsers(f, nil)

	u, err := svc.CreateUser(ctx, &CreateUserRequest{
		Name: "Cy", Email: "cy@b.com", Username: "cy", Password: "password1", Role: "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, hasher.Digest("password1"), u.Password)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{
		Name: "Cy2", Email: "cy2@b.com", Username: "cy", Password: "password1", Role: "user",
	})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Name: "D", Email: "d@b.com", Username: "d", Password: "password1"})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "role", verr.Field)
}

func TestUpdateUser_KeepsDigest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	f.seedUser(t, model.User{Name: "Bob", Email: "bob@b.com", Username: "bob", Role: "user"}, "password1")
	svc := newUsers(f, nil)

	u, err := svc.UpdateUser(ctx, ann.ID, &UpdateUserRequest{Name: "Annie", Email: "a@b.com", Username: "ann", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, model.RoleAdmin, u.Role)

	stored, err := f.users.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.Password, stored.Password)

	_, err = svc.UpdateUser(ctx, ann.ID, &UpdateUserRequest{Name: "Annie", Email: "a@b.com", Username: "bob", Role: "user"})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = svc.UpdateUser(ctx, "missing", &UpdateUserRequest{Name: "X", Email: "x@b.com", Username: "x", Role: "user"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSearchAndDeleteUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "ann@shop.com", Username: "annie", Role: "user"}, "password1")
	f.seedUser(t, model.User{Name: "Bob", Email: "bob@mail.com", Username: "bobby", Role: "user"}, "password1")
	svc := newUsers(f, nil)

	byEmail, err := svc.SearchUsers(ctx, "SHOP")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, ann.ID, byEmail[0].ID)

	byUsername, err := svc.SearchUsers(ctx, "bobb")
	require.NoError(t, err)
	assert.Len(t, byUsername, 1)

	require.NoError(t, svc.DeleteUser(ctx, ann.ID))
	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	images := objectstore.NewMemory("http://files")
	svc := newUsers(f, images)

	updated, err := svc.UpdateProfile(ctx, ann.ToSession(), &ProfileRequest{
		Name: "Annie", Email: "a@b.com", Username: "ann",
		NewPassword: "password2", ConfirmNewPassword: "password2",
	}, &Image{Body: strings.NewReader("face")})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "http://files/profile_images/"+ann.ID+".jpg", updated.ImageURL)
	assert.Equal(t, *updated, *f.session.Current())

	stored, err := f.users.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, hasher.Digest("password2"), stored.Password)
	assert.Equal(t, "user", stored.Role)
	assert.Equal(t, updated.ImageURL, stored.ImageURL)
}

func TestUpdateProfile_KeepsPasswordWhenBlank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	svc := newUsers(f, failingImages{})

	updated, err := svc.UpdateProfile(ctx, ann.ToSession(), &ProfileRequest{
		Name: "Ann", Email: "new@b.com", Username: "ann",
	}, &Image{Body: strings.NewReader("face")})
	assert.ErrorIs(t, err, model.ErrImageUploadFailed)
	require.NotNil(t, updated)
	assert.Equal(t, "new@b.com", updated.Email)

	stored, err := f.users.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, hasher.Digest("password1"), stored.Password)
	assert.Equal(t, "new@b.com", stored.Email)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	svc := newUsers(f, nil)

	_, err := svc.UpdateProfile(ctx, model.Session{UserID: ann.ID}, &ProfileRequest{Name: "A", Email: "a@b.com", Username: "ann"}, nil)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = svc.UpdateProfile(ctx, ann.ToSession(), &ProfileRequest{
		Name: "Ann", Email: "a@b.com", Username: "ann", NewPassword: "password2", ConfirmNewPassword: "password3",
	}, nil)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "confirmNewPassword", verr.Field)
}

func TestUpdateProfile_DeletedIdentityStaysDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	svc := newUsers(f, nil)

	require.NoError(t, svc.DeleteUser(ctx, ann.ID))

	updated, err := svc.UpdateProfile(ctx, ann.ToSession(), &ProfileRequest{
		Name: "Ann", Email: "a@b.com", Username: "ann",
	}, nil)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	assert.Nil(t, updated)

	_, err = f.users.FindByID(ctx, ann.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateProfile_RoleComesFromStoredRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.seedUser(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"}, "password1")
	svc := newUsers(f, nil)

	stale := ann.ToSession()
	stale.Role = model.RoleAdmin

	updated, err := svc.UpdateProfile(ctx, stale, &ProfileRequest{Name: "Ann", Email: "a@b.com", Username: "ann"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "user", updated.Role)
}
