package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// SignalService fans user store changes out over redis pub/sub.
type SignalService struct {
	rdb     *redis.Client
	channel string
}

var _ usecase.UserEventPublisher = (*SignalService)(nil)

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb:     redisClient,
		channel: domain.UserEventsChannel,
	}
}

func (s *SignalService) PublishUserEvent(ctx context.Context, event domain.UserEvent) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode user event")
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "failed to publish user event")
	}

	return nil
}
