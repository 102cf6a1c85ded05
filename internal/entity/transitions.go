package entity

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
)

// Redirection tells which table, if any, moved the player.
type Redirection int

const (
	NoRedirect Redirection = iota
	SnakeRedirect
	LadderRedirect
)

// Transitions holds the snake and ladder tables keyed by source square.
type Transitions struct {
	Snakes  map[int]int `json:"snakes" yaml:"snakes"`
	Ladders map[int]int `json:"ladders" yaml:"ladders"`
}

// DefaultTransitions - the classic 10x10 board layout.
func DefaultTransitions() Transitions {
	return Transitions{
		Snakes: map[int]int{
			16: 6,
			47: 26,
			49: 11,
			56: 53,
			62: 19,
			64: 60,
			87: 24,
			93: 73,
			95: 75,
			98: 78,
		},
		Ladders: map[int]int{
			1:  38,
			4:  14,
			9:  31,
			21: 42,
			28: 84,
			36: 44,
			51: 67,
			71: 91,
			80: 100,
		},
	}
}

// Validate - checks the tables against a board whose final square is last.
func (that Transitions) Validate(last int) error {
	for _, from := range sortedKeys(that.Snakes) {
		to := that.Snakes[from]

		if err := checkRange(last, from, to); err != nil {
			return fmt.Errorf("%w: snake %d->%d: %w", apperror.ErrInvalidTransitions, from, to, err)
		}

		if to >= from {
			return fmt.Errorf("%w: snake %d->%d must lead down", apperror.ErrInvalidTransitions, from, to)
		}

		if from == last {
			return fmt.Errorf("%w: snake head on final square %d", apperror.ErrInvalidTransitions, last)
		}

		if _, ok := that.Ladders[from]; ok {
			return fmt.Errorf("%w: square %d is both a snake head and a ladder bottom", apperror.ErrInvalidTransitions, from)
		}
	}

	for _, from := range sortedKeys(that.Ladders) {
		to := that.Ladders[from]

		if err := checkRange(last, from, to); err != nil {
			return fmt.Errorf("%w: ladder %d->%d: %w", apperror.ErrInvalidTransitions, from, to, err)
		}

		if to <= from {
			return fmt.Errorf("%w: ladder %d->%d must lead up", apperror.ErrInvalidTransitions, from, to)
		}
	}

	return nil
}

// Redirect - resolves a landing square through the tables. Snakes are looked up first
// and only one redirection is applied.
func (that Transitions) Redirect(square int) (int, Redirection) {
	if to, ok := that.Snakes[square]; ok {
		return to, SnakeRedirect
	}

	if to, ok := that.Ladders[square]; ok {
		return to, LadderRedirect
	}

	return square, NoRedirect
}

func checkRange(last int, squares ...int) error {
	for _, square := range squares {
		if square < StartSquare || square > last {
			return fmt.Errorf("%w: %d", apperror.ErrSquareOutOfRange, square)
		}
	}

	return nil
}

// keeps validation errors stable across runs
func sortedKeys(table map[int]int) []int {
	keys := make([]int, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}

	sort.Ints(keys)

	return keys
}
