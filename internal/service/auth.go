package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"

	"github.com/avorontsov/identity-service/internal/events"
	"github.com/avorontsov/identity-service/internal/hash"
	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/search"
	"github.com/avorontsov/identity-service/internal/tokens"
)

const minPasswordLen = 8

// AuthService drives the session lifecycle: register, login, refresh,
// logout, self. It owns no state beyond its collaborators.
type AuthService struct {
	Repo   repo.GormRepo
	Tokens *tokens.TokenService
	Events *events.Producer
	Search *search.UserIndex
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SessionResult is what every token-issuing transition returns: the subject
// plus a freshly minted access/refresh pair backed by one ledger row.
type SessionResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

func (in RegisterInput) validate() error {
	if in.FirstName == "" {
		return fmt.Errorf("%w: firstName is required", ErrValidation)
	}
	if in.LastName == "" {
		return fmt.Errorf("%w: lastName is required", ErrValidation)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// Register creates a customer-role user and starts its first session.
// Self-registration never assigns a role or tenant.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := in.validate(); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("register_failed", "reason", "email already exists")
			return nil, ErrConflict
		}
		l.Error("register_failed", "reason", "db_error", "error", err)
		return nil, err
	}

	res, err := s.issueSession(ctx, &user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeUserCreated, &user)
	s.index(ctx, &user)

	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

// Login authenticates by email and password. A missing user and a wrong
// password surface as the same error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "reason", "db_error", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return res, nil
}

// Refresh rotates the session named by the validated refresh claims. The new
// ledger row is persisted before the old one is deleted: a failure in
// between leaves one extra valid token outstanding, never a client with no
// token at all. The reverse order would.
func (s *AuthService) Refresh(ctx context.Context, claims *tokens.RefreshClaims) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrValidation)
	}
	oldRecordID, err := claims.LedgerID()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token id", ErrValidation)
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "user gone", "user_id", userID)
			return nil, fmt.Errorf("%w: user with the token could not find", ErrNotFound)
		}
		return nil, err
	}

	res, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.DeleteRefreshToken(ctx, oldRecordID); err != nil {
		// The new session is already live; an undeleted old row only means
		// one extra currently-valid token, which the next logout clears.
		l.Warn("refresh_rotate_incomplete", "old_record_id", oldRecordID, "error", err)
	}

	l.Info("refresh_success", "user_id", user.ID)
	return res, nil
}

// Logout revokes the session named by recordID. Idempotent.
func (s *AuthService) Logout(ctx context.Context, recordID uint) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.Repo.DeleteRefreshToken(ctx, recordID); err != nil {
		l.Error("logout_failed", "record_id", recordID, "error", err)
		return err
	}

	l.Info("logout_success", "record_id", recordID)
	return nil
}

// Self returns the profile behind validated access claims, password omitted.
func (s *AuthService) Self(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue_session")

	accessToken, err := s.Tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		if errors.Is(err, tokens.ErrNoSigningKey) {
			l.Error("issue_session_failed", "reason", "signing key missing", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return nil, err
	}

	record, err := s.Repo.PersistRefreshToken(ctx, user)
	if err != nil {
		l.Error("issue_session_failed", "reason", "cannot persist refresh record", "error", err)
		return nil, err
	}

	refreshToken, err := s.Tokens.IssueRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// publish and index are best-effort: a broker or index failure never fails
// the request that triggered it.
func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	key := strconv.FormatUint(uint64(user.ID), 10)
	if err := s.Events.Publish(ctx, eventType, key, user); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}

func (s *AuthService) index(ctx context.Context, user *models.User) {
	if err := s.Search.IndexUser(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("user_index_failed", "user_id", user.ID, "error", err)
	}
}
