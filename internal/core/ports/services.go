package ports

import (
	"context"

	"streamdash/internal/core/domain"
)

// EventPublisher fans a mutation event out to subscribed connections.
// Publishing never fails from the caller's perspective; delivery is
// fire-and-forget.
type EventPublisher interface {
	Publish(event domain.Event)
}

// ChannelActivityRecorder counts registry mutations so periodic channel-delta
// snapshots can report real activity instead of random numbers.
type ChannelActivityRecorder interface {
	RecordChannelCreated()
	RecordChannelUpdated()
}

// ChannelService is the validated, event-publishing registry for channels.
type ChannelService interface {
	Create(ctx context.Context, channel domain.Channel) (domain.Channel, error)
	Get(ctx context.Context, id domain.ChannelID) (domain.Channel, error)
	List(ctx context.Context, filter domain.ChannelFilter, page, limit int) ([]domain.Channel, int, error)
	Update(ctx context.Context, id domain.ChannelID, patch domain.ChannelPatch) (domain.Channel, error)
	Delete(ctx context.Context, id domain.ChannelID) (domain.Channel, error)
	TestStream(ctx context.Context, id domain.ChannelID) (domain.StreamTestResult, error)
	Stats(ctx context.Context, id domain.ChannelID) (domain.ChannelStats, error)
}

// UserService is the validated, event-publishing registry for users.
type UserService interface {
	Create(ctx context.Context, username, email, password string, role domain.UserRole, avatar string) (domain.User, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
	Get(ctx context.Context, id domain.UserID) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, id domain.UserID, patch domain.UserPatch, password string) (domain.User, error)
	Delete(ctx context.Context, id domain.UserID) (domain.User, error)
	Stats(ctx context.Context) (domain.UserStatsReport, error)
}
