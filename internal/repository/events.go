package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

type EventBus interface {
	Publish(ctx context.Context, game *entity.Game) error
	Subscribe(ctx context.Context, gameID string) (<-chan *entity.Game, error)
}

type redisEventBus struct {
	logger *slog.Logger
	client *redis.Client
}

// NewEventBus - fans game updates out over redis pub/sub.
func NewEventBus(logger *slog.Logger, client *redis.Client) EventBus {
	return &redisEventBus{
		logger: logger.With("component", "eventBus"),
		client: client,
	}
}

func eventsChannel(gameID string) string {
	return "game:" + gameID + ":events"
}

func (that *redisEventBus) Publish(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Publish(ctx, eventsChannel(game.ID), gameJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game update: %w", err)
	}

	return nil
}

// Subscribe - streams updates of one game until ctx is done.
func (that *redisEventBus) Subscribe(ctx context.Context, gameID string) (<-chan *entity.Game, error) {
	log := that.logger.With("method", "Subscribe", "gameID", gameID)

	pubsub := that.client.Subscribe(ctx, eventsChannel(gameID))

	// wait for the confirmation so no update published after return is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to game updates: %w", err)
	}

	updates := make(chan *entity.Game)

	go func() {
		defer close(updates)
		defer pubsub.Close()

		messages := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				game, err := decodeGame(msg.Payload)
				if err != nil {
					log.Error("failed to decode game update", "error", err)
					continue
				}

				select {
				case updates <- game:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
