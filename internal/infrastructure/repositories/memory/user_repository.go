package memory

import (
	"context"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
)

type MemoryUserRepository struct {
	store *store[domain.User]
}

// NewMemoryUserRepository returns an in-memory user store. Users list in
// arrival order.
func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		store: newStore(
			false,
			func(u *domain.User, id int64) { u.ID = domain.UserID(id) },
			cloneUser,
		),
	}
}

func cloneUser(u domain.User) domain.User {
	if u.Permissions != nil {
		u.Permissions = append([]string(nil), u.Permissions...)
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		u.LastLogin = &t
	}
	return u
}

// Insert enforces email and username uniqueness inside the store lock, so
// concurrent inserts with the same identity cannot both commit.
func (r *MemoryUserRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return r.store.insertIf(user, func(existing domain.User) error {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		return nil
	})
}

func (r *MemoryUserRepository) Get(ctx context.Context, id domain.UserID) (domain.User, error) {
	user, ok := r.store.get(int64(id))
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, ok := r.store.find(func(u domain.User) bool { return u.Email == email })
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	user, ok := r.store.find(func(u domain.User) bool { return u.Username == username })
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id domain.UserID, patch domain.UserPatch) (domain.User, error) {
	user, ok, err := r.store.updateIf(int64(id), func(other domain.User) error {
		if patch.Email != nil && other.Email == *patch.Email {
			return domain.ErrEmailTaken
		}
		if patch.Username != nil && other.Username == *patch.Username {
			return domain.ErrUsernameTaken
		}
		return nil
	}, func(u *domain.User) {
		patch.Apply(u)
		u.UpdatedAt = time.Now()
	})
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Remove(ctx context.Context, id domain.UserID) (domain.User, error) {
	user, ok := r.store.remove(int64(id))
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) List(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.User, int, error) {
	items, total := r.store.list(func(u domain.User) bool {
		if filter.Role != "" && u.Role != filter.Role {
			return false
		}
		if filter.Status != "" && u.Status != filter.Status {
			return false
		}
		return true
	}, page, limit)
	return items, total, nil
}

func (r *MemoryUserRepository) All(ctx context.Context) ([]domain.User, error) {
	return r.store.all(), nil
}
