package board

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

// Segment is a snake or ladder drawn between two squares.
type Segment struct {
	From       int   `json:"from"`
	To         int   `json:"to"`
	FromCenter Point `json:"from_center"`
	ToCenter   Point `json:"to_center"`
}

// Layout is everything a renderer needs to draw the static board.
type Layout struct {
	Side     int       `json:"side"`
	CellSize int       `json:"cell_size"`
	Grid     [][]int   `json:"grid"`
	Snakes   []Segment `json:"snakes"`
	Ladders  []Segment `json:"ladders"`
}

// Layout - builds the drawable board for the given tables.
func (that Geometry) Layout(transitions entity.Transitions, cellSize int) (*Layout, error) {
	snakes, err := that.segments(transitions.Snakes, cellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out snakes: %w", err)
	}

	ladders, err := that.segments(transitions.Ladders, cellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out ladders: %w", err)
	}

	return &Layout{
		Side:     that.side,
		CellSize: cellSize,
		Grid:     that.Grid(),
		Snakes:   snakes,
		Ladders:  ladders,
	}, nil
}

func (that Geometry) segments(table map[int]int, cellSize int) ([]Segment, error) {
	segments := make([]Segment, 0, len(table))

	for from, to := range table {
		fromCenter, err := that.Center(from, cellSize)
		if err != nil {
			return nil, err
		}

		toCenter, err := that.Center(to, cellSize)
		if err != nil {
			return nil, err
		}

		segments = append(segments, Segment{
			From:       from,
			To:         to,
			FromCenter: fromCenter,
			ToCenter:   toCenter,
		})
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].From < segments[j].From
	})

	return segments, nil
}
