package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	apperrors "streamdash/pkg/errors"
	"streamdash/pkg/validation"

	"go.uber.org/zap"
)

type channelService struct {
	repo     ports.ChannelRepository
	events   ports.EventPublisher
	activity ports.ChannelActivityRecorder
	logger   *zap.SugaredLogger
}

// NewChannelService wires the channel registry: validation in front of the
// repository, mutation events published after the write commits.
func NewChannelService(
	repo ports.ChannelRepository,
	events ports.EventPublisher,
	activity ports.ChannelActivityRecorder,
	logger *zap.SugaredLogger,
) ports.ChannelService {
	return &channelService{
		repo:     repo,
		events:   events,
		activity: activity,
		logger:   logger,
	}
}

func (s *channelService) Create(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	if err := validation.ValidateChannelName(channel.Name); err != nil {
		return domain.Channel{}, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateStreamURL(channel.URL); err != nil {
		return domain.Channel{}, apperrors.NewInvalidInputError(err.Error())
	}
	if channel.Status == "" {
		channel.Status = domain.ChannelStatusActive
	}
	if channel.Status != domain.ChannelStatusActive && channel.Status != domain.ChannelStatusInactive {
		return domain.Channel{}, apperrors.NewInvalidInputError("invalid channel status")
	}

	created, err := s.repo.Insert(ctx, channel)
	if err != nil {
		return domain.Channel{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to create channel", 500)
	}

	s.activity.RecordChannelCreated()
	s.events.Publish(domain.NewEvent(domain.TopicChannel, domain.EventCreated, created))
	s.logger.Infow("Channel created", "channel_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *channelService) Get(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	channel, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return domain.Channel{}, apperrors.NewNotFoundError("Channel")
		}
		return domain.Channel{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to load channel", 500)
	}
	return channel, nil
}

func (s *channelService) List(ctx context.Context, filter domain.ChannelFilter, page, limit int) ([]domain.Channel, int, error) {
	channels, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to list channels", 500)
	}
	return channels, total, nil
}

func (s *channelService) Update(ctx context.Context, id domain.ChannelID, patch domain.ChannelPatch) (domain.Channel, error) {
	if patch.Name != nil {
		if err := validation.ValidateChannelName(*patch.Name); err != nil {
			return domain.Channel{}, apperrors.NewInvalidInputError(err.Error())
		}
	}
	if patch.URL != nil {
		if err := validation.ValidateStreamURL(*patch.URL); err != nil {
			return domain.Channel{}, apperrors.NewInvalidInputError(err.Error())
		}
	}
	if patch.Status != nil && *patch.Status != domain.ChannelStatusActive && *patch.Status != domain.ChannelStatusInactive {
		return domain.Channel{}, apperrors.NewInvalidInputError("invalid channel status")
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return domain.Channel{}, apperrors.NewNotFoundError("Channel")
		}
		return domain.Channel{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to update channel", 500)
	}

	s.activity.RecordChannelUpdated()
	s.events.Publish(domain.NewEvent(domain.TopicChannel, domain.EventUpdated, updated))
	s.logger.Infow("Channel updated", "channel_id", updated.ID)
	return updated, nil
}

func (s *channelService) Delete(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return domain.Channel{}, apperrors.NewNotFoundError("Channel")
		}
		return domain.Channel{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to delete channel", 500)
	}

	s.events.Publish(domain.NewEvent(domain.TopicChannel, domain.EventDeleted, removed))
	s.logger.Infow("Channel deleted", "channel_id", removed.ID)
	return removed, nil
}

// TestStream simulates a reachability probe against the channel URL. The
// probe never dials out; it reports a randomized result after a short delay
// so the dashboard gets a realistic round trip.
func (s *channelService) TestStream(ctx context.Context, id domain.ChannelID) (domain.StreamTestResult, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return domain.StreamTestResult{}, err
	}

	delay := time.Duration(100+rand.Intn(400)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return domain.StreamTestResult{}, ctx.Err()
	}

	return domain.StreamTestResult{
		ChannelID:      channel.ID,
		ChannelName:    channel.Name,
		URL:            channel.URL,
		IsWorking:      rand.Float64() > 0.2,
		ResponseTimeMs: int(delay / time.Millisecond),
		Quality:        channel.Quality,
		TestedAt:       time.Now().UTC(),
	}, nil
}

// Stats returns a synthetic viewership snapshot for a channel. Total views
// come from the registry entry; the rest is demonstration data.
func (s *channelService) Stats(ctx context.Context, id domain.ChannelID) (domain.ChannelStats, error) {
	channel, err := s.Get(ctx, id)
	if err != nil {
		return domain.ChannelStats{}, err
	}

	week := make([]int, 7)
	for i := range week {
		week[i] = 500 + rand.Intn(4500)
	}

	return domain.ChannelStats{
		ChannelID:        channel.ID,
		ChannelName:      channel.Name,
		TotalViews:       channel.Views,
		DailyViews:       100 + rand.Intn(900),
		PeakHour:         "20:00",
		AverageWatchTime: "24 min",
		LastWeekViews:    week,
		UpdatedAt:        time.Now().UTC(),
	}, nil
}
