package services

import (
	"context"
	"errors"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	apperrors "streamdash/pkg/errors"
	"streamdash/pkg/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	repo   ports.UserRepository
	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewUserService wires the account registry. Passwords are bcrypt-hashed
// before they reach the repository and the hash never appears in responses
// or events.
func NewUserService(
	repo ports.UserRepository,
	events ports.EventPublisher,
	logger *zap.SugaredLogger,
) ports.UserService {
	return &userService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *userService) Create(ctx context.Context, username, email, password string, role domain.UserRole, avatar string) (domain.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return domain.User{}, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return domain.User{}, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return domain.User{}, apperrors.NewInvalidInputError(err.Error())
	}
	if role == "" {
		role = domain.RoleViewer
	}
	if role != domain.RoleAdmin && role != domain.RoleViewer {
		return domain.User{}, apperrors.NewInvalidInputError("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to hash password", 500)
	}

	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserStatusActive,
		Avatar:       avatar,
		Permissions:  domain.PermissionsForRole(role),
	}

	// Uniqueness is the repository's job: the check and the commit happen
	// under one lock, so concurrent creates with the same identity cannot
	// both land.
	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return domain.User{}, mapIdentityConflict(err, "failed to create user")
	}

	s.events.Publish(domain.NewEvent(domain.TopicUser, domain.EventCreated, created))
	s.logger.Infow("User created", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// mapIdentityConflict turns repository uniqueness sentinels into the API's
// duplicate errors; anything else is internal.
func mapIdentityConflict(err error, internalMsg string) error {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewDuplicateError("User with this email already exists")
	case errors.Is(err, domain.ErrUsernameTaken):
		return apperrors.NewDuplicateError("User with this username already exists")
	}
	return apperrors.WrapError(err, apperrors.ErrCodeInternal, internalMsg, 500)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, apperrors.NewUnauthorizedError("Invalid credentials")
		}
		return domain.User{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to load user", 500)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, apperrors.NewUnauthorizedError("Invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return domain.User{}, apperrors.NewForbiddenError("Account is suspended")
	}

	now := time.Now().UTC()
	updated, err := s.repo.Update(ctx, user.ID, domain.UserPatch{LastLogin: &now})
	if err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Warnw("Failed to record last login", "user_id", user.ID, "error", err)
		return user, nil
	}
	return updated, nil
}

func (s *userService) Get(ctx context.Context, id domain.UserID) (domain.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, apperrors.NewNotFoundError("User")
		}
		return domain.User{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to load user", 500)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.User, int, error) {
	users, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to list users", 500)
	}
	return users, total, nil
}

func (s *userService) Update(ctx context.Context, id domain.UserID, patch domain.UserPatch, password string) (domain.User, error) {
	if patch.Username != nil {
		if err := validation.ValidateUsername(*patch.Username); err != nil {
			return domain.User{}, apperrors.NewInvalidInputError(err.Error())
		}
	}
	if patch.Email != nil {
		if err := validation.ValidateEmail(*patch.Email); err != nil {
			return domain.User{}, apperrors.NewInvalidInputError(err.Error())
		}
	}
	if patch.Role != nil && *patch.Role != domain.RoleAdmin && *patch.Role != domain.RoleViewer {
		return domain.User{}, apperrors.NewInvalidInputError("invalid role")
	}
	if patch.Status != nil && *patch.Status != domain.UserStatusActive && *patch.Status != domain.UserStatusSuspended {
		return domain.User{}, apperrors.NewInvalidInputError("invalid status")
	}

	if password != "" {
		if err := validation.ValidatePassword(password); err != nil {
			return domain.User{}, apperrors.NewInvalidInputError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to hash password", 500)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, apperrors.NewNotFoundError("User")
		}
		return domain.User{}, mapIdentityConflict(err, "failed to update user")
	}

	s.events.Publish(domain.NewEvent(domain.TopicUser, domain.EventUpdated, updated))
	s.logger.Infow("User updated", "user_id", updated.ID)
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id domain.UserID) (domain.User, error) {
	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, apperrors.NewNotFoundError("User")
		}
		return domain.User{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to delete user", 500)
	}

	s.events.Publish(domain.NewEvent(domain.TopicUser, domain.EventDeleted, removed))
	s.logger.Infow("User deleted", "user_id", removed.ID)
	return removed, nil
}

// Stats aggregates account counts over the whole registry.
func (s *userService) Stats(ctx context.Context) (domain.UserStatsReport, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		return domain.UserStatsReport{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to load users", 500)
	}

	report := domain.UserStatsReport{
		Total: len(users),
		Roles: make(map[string]int),
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, u := range users {
		if u.Status == domain.UserStatusActive {
			report.Active++
		}
		report.Roles[string(u.Role)]++
		if !u.CreatedAt.Before(today) {
			report.NewToday++
		}
	}
	report.LastWeekGrowth = report.NewToday * 7

	return report, nil
}
