package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
	mockedUseCase "github.com/rocketscienceinc/snakeladder-backend/mocks/usecase"
)

var (
	errStorageIsFull = errors.New("storage is full")
	errRedisDown     = errors.New("redis down")
)

type fixedRoller int

func (that fixedRoller) Roll() int {
	return int(that)
}

func defaultRules() Rules {
	return Rules{
		Side:        10,
		CellSize:    50,
		Transitions: entity.DefaultTransitions(),
	}
}

func newManager(t *testing.T, roll int) (*GameManager, *mockedUseCase.MockgameRepo, *mockedUseCase.MockeventBus) {
	t.Helper()

	mockGameRepo := mockedUseCase.NewMockgameRepo(t)
	mockEventBus := mockedUseCase.NewMockeventBus(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager, err := NewGameManager(logger, mockGameRepo, mockEventBus, fixedRoller(roll), defaultRules())
	require.NoError(t, err)

	return manager, mockGameRepo, mockEventBus
}

// storedGame makes Update behave like the repository does for a stored game.
func storedGame(game *entity.Game) func(context.Context, string, func(*entity.Game) error) (*entity.Game, error) {
	return func(_ context.Context, _ string, mutate func(*entity.Game) error) (*entity.Game, error) {
		copied := *game
		if err := mutate(&copied); err != nil {
			return nil, err
		}

		return &copied, nil
	}
}

func TestNewGameManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Rejects malformed tables", func(t *testing.T) {
		// Given: rules with a ladder leading down
		rules := defaultRules()
		rules.Transitions = entity.Transitions{Ladders: map[int]int{50: 10}}

		// When: building the manager
		_, err := NewGameManager(logger, nil, nil, fixedRoller(1), rules)

		// Then: a configuration error is returned
		require.ErrorIs(t, err, apperror.ErrInvalidTransitions)
	})

	t.Run("Rejects a degenerate board", func(t *testing.T) {
		// Given: rules with a 1x1 board
		rules := defaultRules()
		rules.Side = 1

		// When: building the manager
		_, err := NewGameManager(logger, nil, nil, fixedRoller(1), rules)

		// Then: ErrInvalidBoard is returned
		require.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a fresh game", func(t *testing.T) {
		// Given: a repository accepting writes
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(nil).
			Once()

		// When: a new game is requested
		game, err := manager.NewGame(ctx)

		// Then: the game starts on square 1 with an id
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, 1, game.Position)
		assert.Equal(t, entity.StatusPlaying, game.Status)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		// Given: a full repository
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(errStorageIsFull).
			Once()

		// When: a new game is requested
		game, err := manager.NewGame(ctx)

		// Then: the error surfaces
		require.ErrorIs(t, err, errStorageIsFull)
		assert.Nil(t, game)
	})
}

func TestGameManager_GetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored game", func(t *testing.T) {
		manager, mockGameRepo, _ := newManager(t, 1)

		stored := entity.NewGame("g1")
		mockGameRepo.EXPECT().GetByID(mock.Anything, "g1").Return(stored, nil).Once()

		game, err := manager.GetGame(ctx, "g1")

		require.NoError(t, err)
		assert.Equal(t, stored, game)
	})

	t.Run("Returns ErrGameNotFound for unknown ids", func(t *testing.T) {
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().GetByID(mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()

		_, err := manager.GetGame(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_RollDice(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves the turn and publishes it once", func(t *testing.T) {
		// Given: a stored game on square 10 and a die that rolls 6
		manager, mockGameRepo, mockEventBus := newManager(t, 6)

		stored := entity.NewGame("g1")
		stored.Position = 10

		mockGameRepo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			RunAndReturn(storedGame(stored)).
			Once()

		mockEventBus.EXPECT().
			Publish(mock.Anything, mock.MatchedBy(func(game *entity.Game) bool {
				return game.ID == "g1" && game.Position == 6
			})).
			Return(nil).
			Once()

		// When: rolling
		game, err := manager.RollDice(ctx, "g1")

		// Then: the snake on 16 takes the player to 6
		require.NoError(t, err)
		assert.Equal(t, "g1", game.ID)
		assert.Equal(t, 6, game.Position)
		assert.Equal(t, 6, game.LastRoll)
		assert.Equal(t, entity.MoveSnake, game.Move)
	})

	t.Run("Publish failure does not fail the roll", func(t *testing.T) {
		// Given: a broken event bus
		manager, mockGameRepo, mockEventBus := newManager(t, 3)

		stored := entity.NewGame("g1")
		stored.Position = 97

		mockGameRepo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			RunAndReturn(storedGame(stored)).
			Once()

		mockEventBus.EXPECT().
			Publish(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(errRedisDown).
			Once()

		// When: rolling the winning 3
		game, err := manager.RollDice(ctx, "g1")

		// Then: the game is still won
		require.NoError(t, err)
		assert.True(t, game.Won)
		assert.Equal(t, 100, game.Position)
	})

	t.Run("Corrupt stored position is rejected", func(t *testing.T) {
		// Given: a stored game beyond the board
		manager, mockGameRepo, _ := newManager(t, 1)

		stored := entity.NewGame("g1")
		stored.Position = 250

		mockGameRepo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			RunAndReturn(storedGame(stored)).
			Once()

		// When: rolling
		_, err := manager.RollDice(ctx, "g1")

		// Then: ErrInvalidPosition is returned and nothing is published
		require.ErrorIs(t, err, apperror.ErrInvalidPosition)
	})

	t.Run("Broken roller fails the roll", func(t *testing.T) {
		// Given: a die that reports a 9
		manager, mockGameRepo, _ := newManager(t, 9)

		mockGameRepo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			RunAndReturn(storedGame(entity.NewGame("g1"))).
			Once()

		// When: rolling
		game, err := manager.RollDice(ctx, "g1")

		// Then: ErrInvalidRoll is returned and nothing is published
		require.ErrorIs(t, err, apperror.ErrInvalidRoll)
		assert.Nil(t, game)
	})

	t.Run("Unknown game", func(t *testing.T) {
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().
			Update(mock.Anything, "nope", mock.Anything).
			Return(nil, apperror.ErrGameNotFound).
			Once()

		_, err := manager.RollDice(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_ResetGame(t *testing.T) {
	ctx := context.Background()

	// Given: a won game
	manager, mockGameRepo, mockEventBus := newManager(t, 1)

	stored := entity.NewGame("g1")
	stored.Position = 100
	stored.MarkWon()

	mockGameRepo.EXPECT().
		Update(mock.Anything, "g1", mock.Anything).
		RunAndReturn(storedGame(stored)).
		Once()

	mockEventBus.EXPECT().
		Publish(mock.Anything, mock.AnythingOfType("*entity.Game")).
		Return(nil).
		Once()

	// When: resetting it
	game, err := manager.ResetGame(ctx, "g1")

	// Then: it starts over under the same id
	require.NoError(t, err)
	assert.Equal(t, entity.NewGame("g1"), game)
}

func TestGameManager_EndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the stored game", func(t *testing.T) {
		// Given: a stored game
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().DeleteByID(mock.Anything, "g1").Return(nil).Once()

		// When: ending it
		err := manager.EndGame(ctx, "g1")

		// Then: the session is gone
		require.NoError(t, err)
	})

	t.Run("Returns ErrGameNotFound for unknown ids", func(t *testing.T) {
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().DeleteByID(mock.Anything, "nope").Return(apperror.ErrGameNotFound).Once()

		err := manager.EndGame(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_Watch(t *testing.T) {
	ctx := context.Background()

	t.Run("Subscribes to an existing game", func(t *testing.T) {
		manager, mockGameRepo, mockEventBus := newManager(t, 1)

		updates := make(chan *entity.Game)
		mockGameRepo.EXPECT().GetByID(mock.Anything, "g1").Return(entity.NewGame("g1"), nil).Once()
		mockEventBus.EXPECT().Subscribe(mock.Anything, "g1").Return((<-chan *entity.Game)(updates), nil).Once()

		stream, err := manager.Watch(ctx, "g1")

		require.NoError(t, err)
		assert.Equal(t, (<-chan *entity.Game)(updates), stream)
	})

	t.Run("Does not subscribe to unknown games", func(t *testing.T) {
		manager, mockGameRepo, _ := newManager(t, 1)

		mockGameRepo.EXPECT().GetByID(mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()

		_, err := manager.Watch(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_Board(t *testing.T) {
	manager, _, _ := newManager(t, 1)

	// When: asking for the layout
	layout, err := manager.Board()

	// Then: it describes the default board
	require.NoError(t, err)
	assert.Equal(t, 10, layout.Side)
	assert.Len(t, layout.Snakes, 10)
	assert.Len(t, layout.Ladders, 9)
}
