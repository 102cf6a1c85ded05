package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/snakeladder-backend/internal/board"
	"github.com/rocketscienceinc/snakeladder-backend/internal/dice"
	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
	"github.com/rocketscienceinc/snakeladder-backend/internal/snakeladder"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, mutate func(game *entity.Game) error) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type eventBus interface {
	Publish(ctx context.Context, game *entity.Game) error
	Subscribe(ctx context.Context, gameID string) (<-chan *entity.Game, error)
}

// Rules describe the board every game is played on.
type Rules struct {
	Side        int
	CellSize    int
	Transitions entity.Transitions
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	eventBus eventBus
	roller   dice.Roller

	rules    Rules
	geometry board.Geometry
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, eventBus eventBus, roller dice.Roller, rules Rules) (*GameManager, error) {
	geometry, err := board.New(rules.Side)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}

	if err = rules.Transitions.Validate(geometry.Last()); err != nil {
		return nil, fmt.Errorf("failed to validate board: %w", err)
	}

	return &GameManager{
		logger: logger.With("component", "gameManager"),

		gameRepo: gameRepo,
		eventBus: eventBus,
		roller:   roller,

		rules:    rules,
		geometry: geometry,
	}, nil
}

// NewGame - starts a game on square 1 under a fresh id.
func (that *GameManager) NewGame(ctx context.Context) (*entity.Game, error) {
	game := entity.NewGame(uuid.NewString())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// RollDice - resolves one turn of the stored game and broadcasts the result.
func (that *GameManager) RollDice(ctx context.Context, id string) (*entity.Game, error) {
	log := that.logger.With("method", "RollDice", "gameID", id)

	var moves []entity.Game

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		engine, err := snakeladder.Restore(game, that.rules.Transitions, that.rules.Side, that.roller)
		if err != nil {
			return fmt.Errorf("failed to restore game: %w", err)
		}

		// a retried transaction starts over with a clean buffer
		moves = moves[:0]
		engine.Subscribe(snakeladder.ObserverFunc(func(move entity.Game) {
			moves = append(moves, move)
		}))

		state, err := engine.RollDice()
		if err != nil {
			return err
		}

		*game = state

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll dice: %w", err)
	}

	for i := range moves {
		log.Debug("move resolved", "move", moves[i].Move, "roll", moves[i].LastRoll, "position", moves[i].Position)
		that.publish(ctx, &moves[i])
	}

	return game, nil
}

// ResetGame - puts the player back on square 1, keeping the game id.
func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		*game = *entity.NewGame(id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	that.publish(ctx, game)

	return game, nil
}

// EndGame - drops the session before its TTL runs out.
func (that *GameManager) EndGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}

	that.logger.Info("game ended", "gameID", id)

	return nil
}

// Watch - streams every update of the game until ctx is done.
func (that *GameManager) Watch(ctx context.Context, id string) (<-chan *entity.Game, error) {
	if _, err := that.gameRepo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	updates, err := that.eventBus.Subscribe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to watch game: %w", err)
	}

	return updates, nil
}

// Board - the static layout the renderer draws the game on.
func (that *GameManager) Board() (*board.Layout, error) {
	layout, err := that.geometry.Layout(that.rules.Transitions, that.rules.CellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out board: %w", err)
	}

	return layout, nil
}

// publish - failures are logged, the move is already committed.
func (that *GameManager) publish(ctx context.Context, game *entity.Game) {
	if err := that.eventBus.Publish(ctx, game); err != nil {
		that.logger.Error("failed to publish game update", "gameID", game.ID, "error", err)
	}
}
