package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
)

const maxUsernameLength = 150

// UserService covers registration, login and account administration.
type UserService struct {
	users         UserRepository
	hasher        PasswordHasher
	tokens        TokenIssuer
	revocations   RevocationList
	ownerUsername string
}

func NewUserService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, revocations RevocationList, ownerUsername string) *UserService {
	return &UserService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		revocations:   revocations,
		ownerUsername: ownerUsername,
	}
}

// Register creates a pupil account. The owner's username is reserved.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	username, err := s.checkCredentials(username, password)
	if err != nil {
		return domain.User{}, err
	}
	return s.insert(ctx, username, password, domain.RolePupil)
}

// Login verifies the credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", domain.User{}, err
	}
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Authenticate turns a bearer token into a verified identity.
func (s *UserService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, err
	}
	if s.revocations == nil || identity.TokenID == "" {
		return identity, nil
	}
	revoked, err := s.revocations.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("check revocation: %w: %w", domain.ErrUnavailable, err)
	}
	if revoked {
		return domain.Identity{}, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}
	return identity, nil
}

// Logout revokes the caller's token until it expires.
func (s *UserService) Logout(ctx context.Context, caller domain.Identity) error {
	if s.revocations == nil || caller.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w: %w", domain.ErrUnavailable, err)
	}
	return nil
}

// CreateUser is the privileged creation path. Any authenticated caller may add
// a pupil; only the owner may add an admin; the owner role cannot be granted.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Identity, username, password, rawRole string) (domain.User, error) {
	if err := auth.Authorize(caller, auth.AnyRole); err != nil {
		return domain.User{}, err
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.User{}, err
	}
	switch role {
	case domain.RoleAdmin:
		if caller.Role != domain.RoleOwner {
			return domain.User{}, fmt.Errorf("%w: only the owner can add admins", domain.ErrForbidden)
		}
	case domain.RolePupil:
	case domain.RoleOwner:
		return domain.User{}, fmt.Errorf("%w: role must be admin or pupil", domain.ErrValidation)
	}

	username, err = s.checkCredentials(username, password)
	if err != nil {
		return domain.User{}, err
	}
	return s.insert(ctx, username, password, role)
}

// ListUsers returns every account without password hashes.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Identity) ([]domain.User, error) {
	if err := auth.Authorize(caller, auth.Privileged); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ChangeRole is owner-only and moves an account between admin and pupil.
func (s *UserService) ChangeRole(ctx context.Context, caller domain.Identity, userID int64, rawRole string) error {
	if err := auth.Authorize(caller, auth.OwnerOnly); err != nil {
		return err
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return err
	}
	switch role {
	case domain.RoleAdmin, domain.RolePupil:
	case domain.RoleOwner:
		return fmt.Errorf("%w: there is exactly one owner", domain.ErrValidation)
	}

	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return fmt.Errorf("%w: the owner's role cannot change", domain.ErrForbidden)
	}
	return s.users.UpdateRole(ctx, userID, role)
}

// DeleteUser lets the owner remove admins and pupils, and admins remove pupils.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Identity, userID int64) error {
	if err := auth.Authorize(caller, auth.Privileged); err != nil {
		return err
	}
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	switch target.Role {
	case domain.RoleOwner:
		return fmt.Errorf("%w: the owner cannot be deleted", domain.ErrForbidden)
	case domain.RoleAdmin:
		if caller.Role != domain.RoleOwner {
			return fmt.Errorf("%w: only the owner can delete admins", domain.ErrForbidden)
		}
	case domain.RolePupil:
	}
	return s.users.DeleteUser(ctx, userID)
}

// SeedOwner provisions the owner account once. It reports whether a record was created.
func (s *UserService) SeedOwner(ctx context.Context, password string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, s.ownerUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if password == "" {
		return false, fmt.Errorf("%w: owner password is not configured", domain.ErrValidation)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	if _, err := s.users.InsertUser(ctx, s.ownerUsername, hash, domain.RoleOwner); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// another instance seeded it first
			return false, nil
		}
		return false, err
	}
	slog.Info("owner account created", "username", s.ownerUsername)
	return true, nil
}

func (s *UserService) checkCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return "", fmt.Errorf("%w: username is too long", domain.ErrValidation)
	}
	if strings.EqualFold(username, s.ownerUsername) {
		return "", fmt.Errorf("%w: username %q is reserved for the owner", domain.ErrValidation, username)
	}
	return username, nil
}

func (s *UserService) insert(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.InsertUser(ctx, username, hash, role)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
