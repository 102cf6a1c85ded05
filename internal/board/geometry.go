// Package board maps linear square numbers onto the zigzag grid of the board.
package board

import (
	"fmt"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
)

const (
	DefaultSide     = 10
	DefaultCellSize = 50

	minSide = 2
)

// Cell is a grid coordinate. Row is counted from the top edge of the rendered
// grid, so square 1 lives in the last row.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Point is a pixel coordinate inside the rendered board.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Geometry struct {
	side int
}

func New(side int) (Geometry, error) {
	if side < minSide {
		return Geometry{}, fmt.Errorf("%w: side %d", apperror.ErrInvalidBoard, side)
	}

	return Geometry{side: side}, nil
}

func (that Geometry) Side() int {
	return that.side
}

// Last - the final square of the board.
func (that Geometry) Last() int {
	return that.side * that.side
}

// LinearToGrid - converts a square number into its grid cell.
func (that Geometry) LinearToGrid(square int) (Cell, error) {
	if square < 1 || square > that.Last() {
		return Cell{}, fmt.Errorf("%w: %d", apperror.ErrSquareOutOfRange, square)
	}

	n := that.side
	rowFromTop := (square - 1) / n
	row := n - 1 - rowFromTop
	col := (square - 1) % n

	if (n%2 == 0 && row%2 == 0) || (n%2 == 1 && row%2 == 1) {
		col = n - 1 - col
	}

	return Cell{Row: row, Col: col}, nil
}

// Grid - square numbers indexed by [row][col].
func (that Geometry) Grid() [][]int {
	grid := make([][]int, that.side)
	for row := range grid {
		grid[row] = make([]int, that.side)
	}

	for square := 1; square <= that.Last(); square++ {
		cell, _ := that.LinearToGrid(square)
		grid[cell.Row][cell.Col] = square
	}

	return grid
}

// Center - pixel centre of a square for the given cell size.
func (that Geometry) Center(square, cellSize int) (Point, error) {
	cell, err := that.LinearToGrid(square)
	if err != nil {
		return Point{}, err
	}

	return Point{
		X: cell.Col*cellSize + cellSize/2,
		Y: cell.Row*cellSize + cellSize/2,
	}, nil
}
