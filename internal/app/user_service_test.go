package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quizbank-service/internal/app"
	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
	"quizbank-service/internal/infra/memory"
)

func TestRegisterCreatesPupil(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.Register(ctx, "  ali  ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ali", user.Username)
	assert.Equal(t, domain.RolePupil, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestRegisterRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.users.Register(ctx, "ali", "secret")
	require.NoError(t, err)

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"duplicate", "ali", "other", domain.ErrConflict},
		{"reserved owner name", ownerName, "x", domain.ErrValidation},
		{"reserved owner name any case", strings.ToUpper(ownerName), "x", domain.ErrValidation},
		{"missing password", "vali", "", domain.ErrValidation},
		{"blank username", "   ", "x", domain.ErrValidation},
		{"too long", strings.Repeat("u", 151), "x", domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tc.username, tc.password)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.users.Register(ctx, "ali", "secret")
	require.NoError(t, err)

	token, user, err := f.users.Login(ctx, "ali", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePupil, user.Role)

	identity, err := f.users.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "ali", identity.Username)
	assert.Equal(t, domain.RolePupil, identity.Role)

	_, _, err = f.users.Login(ctx, "ali", "wrong")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	_, _, err = f.users.Login(ctx, "nobody", "secret")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	token, _, err := f.users.Login(ctx, ownerName, "owner-pass")
	require.NoError(t, err)
	identity, err := f.users.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, f.users.Logout(ctx, identity))

	_, err = f.users.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestSeedOwnerRunsOnce(t *testing.T) {
	f := newFixture(t)
	created, err := f.users.SeedOwner(context.Background(), "another")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateUserPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addUser(t, "teacher", domain.RoleAdmin)
	pupil := f.addUser(t, "pupil", domain.RolePupil)

	cases := []struct {
		name   string
		caller domain.Identity
		role   string
		want   error
	}{
		{"owner adds admin", f.owner, "admin", nil},
		{"owner adds pupil", f.owner, "pupil", nil},
		{"admin adds pupil", admin, "pupil", nil},
		{"pupil adds pupil", pupil, "pupil", nil},
		{"admin adds admin", admin, "admin", domain.ErrForbidden},
		{"pupil adds admin", pupil, "admin", domain.ErrForbidden},
		{"owner grants owner", f.owner, "owner", domain.ErrValidation},
		{"unknown role", f.owner, "teacher", domain.ErrValidation},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			username := "user" + string(rune('a'+i))
			user, err := f.users.CreateUser(ctx, tc.caller, username, "pw", tc.role)
			if tc.want == nil {
				require.NoError(t, err)
				assert.Equal(t, domain.Role(tc.role), user.Role)
				return
			}
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestCreateUserChecksRoleBeforeFields(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "teacher", domain.RoleAdmin)

	_, err := f.users.CreateUser(context.Background(), admin, "", "", "admin")
	assert.True(t, errors.Is(err, domain.ErrForbidden), "got %v", err)
}

func TestCreateUserRejectsReservedAndDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "taken", domain.RolePupil)

	_, err := f.users.CreateUser(ctx, f.owner, ownerName, "pw", "admin")
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	_, err = f.users.CreateUser(ctx, f.owner, "taken", "pw", "pupil")
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
}

func TestListUsersHidesHashes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pupil := f.addUser(t, "pupil", domain.RolePupil)

	users, err := f.users.ListUsers(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	_, err = f.users.ListUsers(ctx, pupil)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addUser(t, "teacher", domain.RoleAdmin)
	pupil := f.addUser(t, "pupil", domain.RolePupil)

	require.NoError(t, f.users.ChangeRole(ctx, f.owner, pupil.UserID, "admin"))
	promoted, err := f.store.FindByID(ctx, pupil.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	err = f.users.ChangeRole(ctx, admin, pupil.UserID, "pupil")
	assert.True(t, errors.Is(err, domain.ErrForbidden), "admin: %v", err)
	err = f.users.ChangeRole(ctx, f.owner, f.owner.UserID, "pupil")
	assert.True(t, errors.Is(err, domain.ErrForbidden), "owner target: %v", err)
	err = f.users.ChangeRole(ctx, f.owner, pupil.UserID, "owner")
	assert.True(t, errors.Is(err, domain.ErrValidation), "owner role: %v", err)
	err = f.users.ChangeRole(ctx, f.owner, 9999, "pupil")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "missing: %v", err)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addUser(t, "teacher", domain.RoleAdmin)
	other := f.addUser(t, "teacher2", domain.RoleAdmin)
	pupil := f.addUser(t, "pupil", domain.RolePupil)
	another := f.addUser(t, "pupil2", domain.RolePupil)

	assert.True(t, errors.Is(f.users.DeleteUser(ctx, admin, other.UserID), domain.ErrForbidden))
	assert.True(t, errors.Is(f.users.DeleteUser(ctx, pupil, another.UserID), domain.ErrForbidden))
	assert.True(t, errors.Is(f.users.DeleteUser(ctx, f.owner, f.owner.UserID), domain.ErrForbidden))
	assert.True(t, errors.Is(f.users.DeleteUser(ctx, f.owner, 9999), domain.ErrNotFound))

	require.NoError(t, f.users.DeleteUser(ctx, admin, pupil.UserID))
	require.NoError(t, f.users.DeleteUser(ctx, f.owner, other.UserID))

	_, err := f.store.FindByID(ctx, pupil.UserID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUsernameLimitCountsCharacters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.Register(ctx, strings.Repeat("ш", 150), "pw")
	require.NoError(t, err)
	assert.Equal(t, 150, len([]rune(user.Username)))

	_, err = f.users.Register(ctx, strings.Repeat("ж", 151), "pw")
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
}

// lateOwnerLookup misses the owner, as a replica booting alongside another does.
type lateOwnerLookup struct {
	*memory.Store
}

func (l lateOwnerLookup) FindByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func TestSeedOwnerToleratesConcurrentSeed(t *testing.T) {
	f := newFixture(t)
	users := app.NewUserService(lateOwnerLookup{Store: f.store}, auth.NewPasswordHasher(bcrypt.MinCost), nil, nil, ownerName)

	created, err := users.SeedOwner(context.Background(), "owner-pass")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeedOwnerRequiresPassword(t *testing.T) {
	users := app.NewUserService(memory.NewStore(), auth.NewPasswordHasher(bcrypt.MinCost), nil, nil, ownerName)

	_, err := users.SeedOwner(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
}
