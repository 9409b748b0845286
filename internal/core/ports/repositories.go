package ports

import (
	"context"

	"streamdash/internal/core/domain"
)

// ChannelRepository is the store contract for channels. Implementations assign
// ids monotonically on Insert, apply patches on the latest committed state, and
// hand out snapshot copies only. Listings surface newest channels first.
type ChannelRepository interface {
	Insert(ctx context.Context, channel domain.Channel) (domain.Channel, error)
	Get(ctx context.Context, id domain.ChannelID) (domain.Channel, error)
	Update(ctx context.Context, id domain.ChannelID, patch domain.ChannelPatch) (domain.Channel, error)
	Remove(ctx context.Context, id domain.ChannelID) (domain.Channel, error)
	List(ctx context.Context, filter domain.ChannelFilter, page, limit int) ([]domain.Channel, int, error)
}

// UserRepository is the store contract for users. Users list in arrival order.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, id domain.UserID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Update(ctx context.Context, id domain.UserID, patch domain.UserPatch) (domain.User, error)
	Remove(ctx context.Context, id domain.UserID) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.User, int, error)
	All(ctx context.Context) ([]domain.User, error)
}
