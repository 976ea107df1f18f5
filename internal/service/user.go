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
	"github.com/avorontsov/identity-service/internal/util"
)

// UserService is the administrative side of user management. Unlike
// self-registration it may assign roles and tenants.
type UserService struct {
	Repo   repo.GormRepo
	Events *events.Producer
	Search *search.UserIndex
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	TenantID  *uint
}

type UpdateUserInput struct {
	FirstName string
	LastName  string
	Role      string
	TenantID  *uint
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: firstName and lastName are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	if !models.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         in.Role,
		TenantID:     in.TenantID,
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrConflict
		}
		l.Error("user_create_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeUserCreated, user.ID, &user)
	s.index(ctx, &user)

	l.Info("user_created", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// Update changes profile fields and role only. Email is the login name and
// the password belongs to its owner; neither is touched here.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) error {
	l := logging.FromContext(ctx).With("svc", "user.update")

	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: firstName and lastName are required", ErrValidation)
	}
	if !models.ValidRole(in.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	if err := s.Repo.UpdateUser(ctx, id, in.FirstName, in.LastName, in.Role, in.TenantID); err != nil {
		l.Error("user_update_failed", "user_id", id, "error", err)
		return err
	}

	if user, err := s.Repo.FindUserByID(ctx, id); err == nil {
		s.publish(ctx, events.TypeUserUpdated, id, user)
		s.index(ctx, user)
	}

	l.Info("user_updated", "user_id", id)
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Delete removes the user; the store's FK cascade revokes every live
// session by dropping the user's ledger rows.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "user.delete")

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		l.Error("user_delete_failed", "user_id", id, "error", err)
		return err
	}

	s.publish(ctx, events.TypeUserDeleted, id, map[string]uint{"id": id})
	if err := s.Search.DeleteUser(ctx, id); err != nil {
		l.Warn("user_deindex_failed", "user_id", id, "error", err)
	}

	l.Info("user_deleted", "user_id", id)
	return nil
}

type UserPage struct {
	Data        []models.User `json:"data"`
	Total       int64         `json:"total"`
	CurrentPage int           `json:"currentPage"`
	PerPage     int           `json:"perPage"`
}

// List serves the admin user listing. With a query term and a configured
// index it searches Elasticsearch and rehydrates rows from the database;
// otherwise it filters in SQL.
func (s *UserService) List(ctx context.Context, p repo.ListUsersParams) (*UserPage, error) {
	from, limit := util.Calculate(p.CurrentPage, p.PerPage)
	page := &UserPage{CurrentPage: p.CurrentPage, PerPage: limit}
	if page.CurrentPage < 1 {
		page.CurrentPage = 1
	}

	if p.Query != "" && s.Search != nil && s.Search.ES != nil {
		total, ids, err := s.Search.SearchUsers(ctx, p.Query, p.Role, from, limit)
		if err == nil {
			users, err := s.Repo.FindUsersByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			for i := range users {
				users[i].PasswordHash = ""
			}
			page.Data = users
			page.Total = total
			return page, nil
		}
		logging.FromContext(ctx).Warn("user_search_failed, falling back to sql", "error", err)
	}

	users, total, err := s.Repo.ListUsers(ctx, p)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	page.Data = users
	page.Total = total
	return page, nil
}

func (s *UserService) publish(ctx context.Context, eventType string, id uint, payload any) {
	key := strconv.FormatUint(uint64(id), 10)
	if err := s.Events.Publish(ctx, eventType, key, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}

func (s *UserService) index(ctx context.Context, user *models.User) {
	if err := s.Search.IndexUser(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("user_index_failed", "user_id", user.ID, "error", err)
	}
}
