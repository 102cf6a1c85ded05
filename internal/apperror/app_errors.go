package apperror

import "errors"

var (
	ErrInvalidTransitions = errors.New("invalid snake or ladder table")
	ErrInvalidBoard       = errors.New("invalid board size")
	ErrSquareOutOfRange   = errors.New("square is out of board range")
	ErrInvalidRoll        = errors.New("dice roll must be between 1 and 6")
	ErrInvalidPosition    = errors.New("player position is out of board range")
	ErrGameNotFound       = errors.New("game not found")
	ErrConcurrentUpdate   = errors.New("game was updated concurrently")
)
