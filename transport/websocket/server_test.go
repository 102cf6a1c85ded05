package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

// fakeGames keeps games in memory and fans every change out to its watchers
// unless silent is set, in which case changes are stored but never published.
type fakeGames struct {
	mu       sync.Mutex
	games    map[string]entity.Game
	watchers map[string][]chan *entity.Game
	nextID   int
	silent   bool
}

func newFakeGames() *fakeGames {
	return &fakeGames{
		games:    make(map[string]entity.Game),
		watchers: make(map[string][]chan *entity.Game),
	}
}

func (that *fakeGames) NewGame(context.Context) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	game := entity.NewGame(fmt.Sprintf("game-%d", that.nextID))
	that.games[game.ID] = *game

	return game, nil
}

func (that *fakeGames) GetGame(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return &game, nil
}

func (that *fakeGames) RollDice(_ context.Context, id string) (*entity.Game, error) {
	return that.update(id, func(game *entity.Game) {
		game.LastRoll = 4
		game.Position += 4
		game.Move = entity.MovePlain
		game.Rolls++
	})
}

func (that *fakeGames) ResetGame(_ context.Context, id string) (*entity.Game, error) {
	return that.update(id, func(game *entity.Game) {
		*game = *entity.NewGame(id)
	})
}

func (that *fakeGames) EndGame(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}

func (that *fakeGames) Watch(ctx context.Context, id string) (<-chan *entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return nil, apperror.ErrGameNotFound
	}

	updates := make(chan *entity.Game, 8)
	that.watchers[id] = append(that.watchers[id], updates)

	go func() {
		<-ctx.Done()

		that.mu.Lock()
		defer that.mu.Unlock()

		watchers := that.watchers[id]
		for i := range watchers {
			if watchers[i] == updates {
				that.watchers[id] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}

		close(updates)
	}()

	return updates, nil
}

func (that *fakeGames) update(id string, mutate func(game *entity.Game)) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	mutate(&game)
	that.games[id] = game

	if that.silent {
		return &game, nil
	}

	for _, watcher := range that.watchers[id] {
		published := game
		watcher <- &published
	}

	return &game, nil
}

func startServer(t *testing.T, games *fakeGames) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(logger, games).Handler(ctx))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action, gameID string) {
	t.Helper()

	msg := Message{Action: action}
	if gameID != "" {
		payload, err := json.Marshal(requestPayload{Game: &gameRef{ID: gameID}})
		require.NoError(t, err)
		msg.Payload = payload
	}

	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload Payload
	if len(msg.Payload) > 0 {
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	}

	return msg.Action, payload
}

// receiveByAction reads n messages that may arrive in any order.
func receiveByAction(t *testing.T, conn *websocket.Conn, n int) map[string]Payload {
	t.Helper()

	received := make(map[string]Payload, n)
	for i := 0; i < n; i++ {
		action, payload := receive(t, conn)
		received[action] = payload
	}

	return received
}

func TestServer_NewGameAndRoll(t *testing.T) {
	conn := dial(t, startServer(t, newFakeGames()))

	// Given: a freshly created game
	send(t, conn, actionNewGame, "")

	action, payload := receive(t, conn)
	require.Equal(t, actionNewGame, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.Position)

	// When: the player rolls
	send(t, conn, actionRoll, payload.Game.ID)

	// Then: the result arrives both as the reply and as an update
	received := receiveByAction(t, conn, 2)

	for _, action := range []string{actionRoll, actionUpdate} {
		result, ok := received[action]
		require.True(t, ok, "missing %s", action)
		require.NotNil(t, result.Game)
		assert.Equal(t, 5, result.Game.Position)
		assert.Equal(t, 4, result.Game.LastRoll)
	}
}

func TestServer_RepliesWithoutPublishedUpdates(t *testing.T) {
	// Given: a backend that stores moves but never publishes them
	games := newFakeGames()
	games.silent = true
	conn := dial(t, startServer(t, games))

	send(t, conn, actionNewGame, "")
	_, created := receive(t, conn)
	require.NotNil(t, created.Game)

	t.Run("Roll", func(t *testing.T) {
		// When: the player rolls
		send(t, conn, actionRoll, created.Game.ID)

		// Then: the roller still gets the result
		action, payload := receive(t, conn)
		require.Equal(t, actionRoll, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, 5, payload.Game.Position)
		assert.Equal(t, 1, payload.Game.Rolls)
	})

	t.Run("Reset", func(t *testing.T) {
		send(t, conn, actionReset, created.Game.ID)

		action, payload := receive(t, conn)
		require.Equal(t, actionReset, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, 1, payload.Game.Position)
	})
}

func TestServer_EndGame(t *testing.T) {
	conn := dial(t, startServer(t, newFakeGames()))

	// Given: a created game
	send(t, conn, actionNewGame, "")
	_, created := receive(t, conn)
	require.NotNil(t, created.Game)

	// When: ending it
	send(t, conn, actionEnd, created.Game.ID)

	// Then: the end is acknowledged and the game is gone
	action, payload := receive(t, conn)
	require.Equal(t, actionEnd, action)
	assert.Empty(t, payload.Error)

	send(t, conn, actionState, created.Game.ID)
	action, payload = receive(t, conn)
	assert.Equal(t, actionState, action)
	assert.Equal(t, apperror.ErrGameNotFound.Error(), payload.Error)
}

func TestServer_BroadcastsToWatchers(t *testing.T) {
	url := startServer(t, newFakeGames())
	player := dial(t, url)
	watcher := dial(t, url)

	// Given: a game and a second connection watching it
	send(t, player, actionNewGame, "")
	_, created := receive(t, player)
	require.NotNil(t, created.Game)

	send(t, watcher, actionState, created.Game.ID)
	action, state := receive(t, watcher)
	require.Equal(t, actionState, action)
	assert.Equal(t, created.Game.ID, state.Game.ID)

	// When: the player rolls and then resets
	send(t, player, actionRoll, created.Game.ID)
	send(t, player, actionReset, created.Game.ID)

	// Then: the watcher sees both updates in order
	action, first := receive(t, watcher)
	require.Equal(t, actionUpdate, action)
	assert.Equal(t, 5, first.Game.Position)

	action, second := receive(t, watcher)
	require.Equal(t, actionUpdate, action)
	assert.Equal(t, 1, second.Game.Position)
}

func TestServer_Errors(t *testing.T) {
	conn := dial(t, startServer(t, newFakeGames()))

	t.Run("Unknown action", func(t *testing.T) {
		send(t, conn, "game:teleport", "")

		action, payload := receive(t, conn)

		assert.Equal(t, actionError, action)
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Missing game id", func(t *testing.T) {
		send(t, conn, actionRoll, "")

		action, payload := receive(t, conn)

		assert.Equal(t, actionRoll, action)
		assert.Equal(t, errGameIDRequired, payload.Error)
	})

	t.Run("Unknown game", func(t *testing.T) {
		send(t, conn, actionState, "missing")

		action, payload := receive(t, conn)

		assert.Equal(t, actionState, action)
		assert.Equal(t, apperror.ErrGameNotFound.Error(), payload.Error)
		assert.Nil(t, payload.Game)
	})

	t.Run("Malformed message", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		action, payload := receive(t, conn)

		assert.Equal(t, actionError, action)
		assert.Equal(t, "invalid message", payload.Error)
	})
}
