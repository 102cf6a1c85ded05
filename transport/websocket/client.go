package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

const writeWait = 10 * time.Second

// client - one WebSocket connection watching at most one game.
type client struct {
	logger *slog.Logger
	conn   *websocket.Conn

	writeMutex sync.Mutex

	watchMutex  sync.Mutex
	watchedID   string
	stopWatchFn context.CancelFunc
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	return &client{
		logger: logger,
		conn:   conn,
	}
}

func (that *client) send(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendGame(action string, game *entity.Game) error {
	return that.send(action, Payload{Game: game})
}

func (that *client) sendError(action, text string) error {
	return that.send(action, Payload{Error: text})
}

// watch - forwards updates of the game as game:update, replacing any previous watch.
func (that *client) watch(ctx context.Context, gameID string, subscribe func(ctx context.Context, id string) (<-chan *entity.Game, error)) error {
	that.watchMutex.Lock()
	defer that.watchMutex.Unlock()

	if that.watchedID == gameID && that.stopWatchFn != nil {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)

	updates, err := subscribe(watchCtx, gameID)
	if err != nil {
		cancel()
		return err
	}

	if that.stopWatchFn != nil {
		that.stopWatchFn()
	}

	that.watchedID = gameID
	that.stopWatchFn = cancel

	go func() {
		for game := range updates {
			if err := that.sendGame(actionUpdate, game); err != nil {
				that.logger.Error("failed to push game update", "gameID", gameID, "error", err)
			}
		}
	}()

	return nil
}

// unwatch - stops forwarding updates of the game if it is the watched one.
func (that *client) unwatch(gameID string) {
	that.watchMutex.Lock()
	defer that.watchMutex.Unlock()

	if that.watchedID != gameID || that.stopWatchFn == nil {
		return
	}

	that.stopWatchFn()
	that.stopWatchFn = nil
	that.watchedID = ""
}

func (that *client) close() {
	that.watchMutex.Lock()
	if that.stopWatchFn != nil {
		that.stopWatchFn()
	}
	that.watchMutex.Unlock()

	_ = that.conn.Close()
}
