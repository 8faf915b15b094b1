package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"secondchance/internal/auth"
	apperrors "secondchance/internal/errors"
	"secondchance/internal/model"
	"secondchance/internal/repository"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	Email string
	Token string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string
	FirstName string
	Email     string
}

// ProfileIdentity selects the user a profile update applies to. UserID comes
// from a verified token and wins over Email, which is the deprecated
// header-supplied identifier.
type ProfileIdentity struct {
	UserID string
	Email  string
}

// ProfileChanges lists the requested profile changes. Nil means "leave as is".
type ProfileChanges struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// ProfileResult reports the outcome of a profile update. Updated is false
// when the request matched the stored values; that is not an error.
type ProfileResult struct {
	User    *model.User
	Token   string
	Updated bool
}

// TokenTTLs configures token lifetimes. Zero means no expiry.
type TokenTTLs struct {
	Register time.Duration
	Login    time.Duration
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	UpdateProfile(ctx context.Context, id ProfileIdentity, changes ProfileChanges) (*ProfileResult, error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens *auth.JWTService
	ttls   TokenTTLs
	log    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens *auth.JWTService, ttls TokenTTLs, log *slog.Logger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ttls:   ttls,
		log:    log.With("component", "auth"),
	}
}

// Register creates a new user with a hashed password and returns a token.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		s.log.ErrorContext(ctx, "Email ID already exists", "email", in.Email)
		return nil, apperrors.ErrEmailExists
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailExists) {
			s.log.ErrorContext(ctx, "Email ID already exists", "email", in.Email)
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, s.ttls.Register)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.InfoContext(ctx, "User registered successfully", "user_id", user.ID)
	return &RegisterResult{Email: user.Email, Token: token}, nil
}

// Login verifies credentials and returns an expiring token.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.log.WarnContext(ctx, "User not found", "email", email)
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.WarnContext(ctx, "Passwords do not match", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, s.ttls.Login)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.InfoContext(ctx, "User logged in successfully", "user_id", user.ID)
	return &LoginResult{Token: token, FirstName: user.FirstName, Email: user.Email}, nil
}

// UpdateProfile applies changes to the user selected by id and re-issues a token.
func (s *authService) UpdateProfile(ctx context.Context, id ProfileIdentity, changes ProfileChanges) (*ProfileResult, error) {
	if changes.FirstName == nil && changes.LastName == nil && changes.Password == nil {
		return nil, apperrors.Validation("at least one of firstName, lastName or password is required")
	}

	user, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var upd model.UserUpdate
	if changes.FirstName != nil && *changes.FirstName != user.FirstName {
		upd.FirstName = changes.FirstName
	}
	if changes.LastName != nil && *changes.LastName != user.LastName {
		upd.LastName = changes.LastName
	}
	if changes.Password != nil {
		hash, err := s.hasher.Hash(*changes.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	updated := !upd.IsEmpty()
	if updated {
		user, err = s.users.UpdateByID(ctx, user.ID, upd)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
		s.log.InfoContext(ctx, "User updated", "user_id", user.ID)
	} else {
		s.log.InfoContext(ctx, "User not updated, no field changed", "user_id", user.ID)
	}

	token, err := s.tokens.Issue(user.ID, s.ttls.Login)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ProfileResult{User: user, Token: token, Updated: updated}, nil
}

func (s *authService) resolve(ctx context.Context, id ProfileIdentity) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case id.UserID != "":
		user, err = s.users.FindByID(ctx, id.UserID)
	case id.Email != "":
		s.log.WarnContext(ctx, "Resolving user by email header is deprecated", "email", id.Email)
		user, err = s.users.FindByEmail(ctx, id.Email)
	default:
		return nil, apperrors.Validation("Email not found in the request headers")
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
