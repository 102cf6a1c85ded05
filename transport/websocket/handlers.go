package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
)

const errGameIDRequired = "game id is required"

func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleNewGame")

	game, err := that.uGame.NewGame(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return c.sendError(msg.Action, "failed to create a new game")
	}

	if err = c.watch(ctx, game.ID, that.uGame.Watch); err != nil {
		log.Error("failed to watch game", "gameID", game.ID, "error", err)
	}

	return c.sendGame(msg.Action, game)
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, c *client) error {
	gameID := msg.gameID()
	if gameID == "" {
		return c.sendError(msg.Action, errGameIDRequired)
	}

	if err := c.watch(ctx, gameID, that.uGame.Watch); err != nil {
		return that.replyError(c, msg.Action, "failed to watch game", err)
	}

	game, err := that.uGame.GetGame(ctx, gameID)
	if err != nil {
		return that.replyError(c, msg.Action, "failed to get the game", err)
	}

	return c.sendGame(msg.Action, game)
}

// handleRollDice - replies with the result; watchers, the roller included, also get game:update.
func (that *Server) handleRollDice(ctx context.Context, msg *Message, c *client) error {
	gameID := msg.gameID()
	if gameID == "" {
		return c.sendError(msg.Action, errGameIDRequired)
	}

	if err := c.watch(ctx, gameID, that.uGame.Watch); err != nil {
		return that.replyError(c, msg.Action, "failed to watch game", err)
	}

	game, err := that.uGame.RollDice(ctx, gameID)
	if err != nil {
		return that.replyError(c, msg.Action, "failed to roll dice", err)
	}

	return c.sendGame(msg.Action, game)
}

func (that *Server) handleResetGame(ctx context.Context, msg *Message, c *client) error {
	gameID := msg.gameID()
	if gameID == "" {
		return c.sendError(msg.Action, errGameIDRequired)
	}

	if err := c.watch(ctx, gameID, that.uGame.Watch); err != nil {
		return that.replyError(c, msg.Action, "failed to watch game", err)
	}

	game, err := that.uGame.ResetGame(ctx, gameID)
	if err != nil {
		return that.replyError(c, msg.Action, "failed to reset game", err)
	}

	return c.sendGame(msg.Action, game)
}

func (that *Server) handleEndGame(ctx context.Context, msg *Message, c *client) error {
	gameID := msg.gameID()
	if gameID == "" {
		return c.sendError(msg.Action, errGameIDRequired)
	}

	c.unwatch(gameID)

	if err := that.uGame.EndGame(ctx, gameID); err != nil {
		return that.replyError(c, msg.Action, "failed to end game", err)
	}

	return c.send(msg.Action, Payload{})
}

func (that *Server) replyError(c *client, action, text string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		text = apperror.ErrGameNotFound.Error()
	case errors.Is(err, apperror.ErrConcurrentUpdate):
		text = apperror.ErrConcurrentUpdate.Error()
	default:
		that.logger.Error(text, "action", action, "error", err)
	}

	if sendErr := c.sendError(action, text); sendErr != nil {
		return fmt.Errorf("failed to send error response: %w", sendErr)
	}

	return nil
}
