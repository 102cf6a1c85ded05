package snakeladder

import (
	"fmt"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
	"github.com/rocketscienceinc/snakeladder-backend/internal/dice"
	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

const (
	msgAlreadyWon = "Game already won! Refresh to play again."
	msgOvershoot  = "Rolled %d. Need exact roll to reach %d."
	msgSnake      = "Rolled %d. Bitten by a snake! Down to %d"
	msgLadder     = "Rolled %d. Climbed a ladder! Up to %d"
	msgMoved      = "Rolled %d. Moved to %d"
	msgWon        = "Congratulations! You won the game!"
)

// Observer is notified with a snapshot after every resolved roll.
type Observer interface {
	OnMove(game entity.Game)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(game entity.Game)

func (f ObserverFunc) OnMove(game entity.Game) {
	f(game)
}

// Engine owns one game and resolves its turns. It is not safe for concurrent use.
type Engine struct {
	game        entity.Game
	transitions entity.Transitions
	last        int
	roller      dice.Roller
	observers   []Observer
}

// New - starts a game on the start square.
func New(transitions entity.Transitions, side int, roller dice.Roller) (*Engine, error) {
	return Restore(entity.NewGame(""), transitions, side, roller)
}

// Restore - wraps an existing game state.
func Restore(game *entity.Game, transitions entity.Transitions, side int, roller dice.Roller) (*Engine, error) {
	last := side * side

	if err := transitions.Validate(last); err != nil {
		return nil, err
	}

	if game.Position < entity.StartSquare || game.Position > last {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, game.Position)
	}

	// the final square and the won flag go together
	if (game.Position == last) != game.IsWon() {
		return nil, fmt.Errorf("%w: %d (won=%t)", apperror.ErrInvalidPosition, game.Position, game.IsWon())
	}

	return &Engine{
		game:        *game,
		transitions: transitions,
		last:        last,
		roller:      roller,
	}, nil
}

func (that *Engine) Subscribe(observer Observer) {
	that.observers = append(that.observers, observer)
}

// State - returns a read-only snapshot of the game.
func (that *Engine) State() entity.Game {
	return that.game
}

// RollDice - draws a roll and resolves the turn. A won game draws nothing.
func (that *Engine) RollDice() (entity.Game, error) {
	if that.game.IsWon() {
		return that.alreadyWon(), nil
	}

	game, err := that.ApplyRoll(that.roller.Roll())
	if err != nil {
		return game, fmt.Errorf("failed to apply roll: %w", err)
	}

	return game, nil
}

// ApplyRoll - resolves the turn for a given roll.
func (that *Engine) ApplyRoll(roll int) (entity.Game, error) {
	if that.game.IsWon() {
		return that.alreadyWon(), nil
	}

	if roll < 1 || roll > entity.DieFaces {
		return that.game, fmt.Errorf("%w: %d", apperror.ErrInvalidRoll, roll)
	}

	that.game.LastRoll = roll
	that.game.Rolls++

	candidate := that.game.Position + roll
	if candidate > that.last {
		that.game.Message = fmt.Sprintf(msgOvershoot, roll, that.last)
		that.game.Move = entity.MoveOvershoot
		that.notify()

		return that.game, nil
	}

	that.land(roll, candidate)
	that.notify()

	return that.game, nil
}

// land - applies redirection and the win check to an in-range candidate.
func (that *Engine) land(roll, candidate int) {
	square, redirection := that.transitions.Redirect(candidate)

	switch redirection {
	case entity.SnakeRedirect:
		that.game.Message = fmt.Sprintf(msgSnake, roll, square)
		that.game.Move = entity.MoveSnake
	case entity.LadderRedirect:
		that.game.Message = fmt.Sprintf(msgLadder, roll, square)
		that.game.Move = entity.MoveLadder
	default:
		that.game.Message = fmt.Sprintf(msgMoved, roll, square)
		that.game.Move = entity.MovePlain
	}

	that.game.Position = square

	// a ladder ending on the final square wins too
	if square == that.last {
		that.game.MarkWon()
		that.game.Message = msgWon
		that.game.Move = entity.MoveWon
	}
}

func (that *Engine) alreadyWon() entity.Game {
	that.game.Message = msgAlreadyWon
	that.game.Move = entity.MoveAlreadyWon
	that.notify()

	return that.game
}

func (that *Engine) notify() {
	for _, observer := range that.observers {
		observer.OnMove(that.game)
	}
}
