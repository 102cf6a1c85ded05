package entity

const (
	StatusPlaying = "playing"
	StatusWon     = "won"
)

// Move kinds describe how the last roll was resolved.
const (
	MoveNone       = ""
	MovePlain      = "move"
	MoveSnake      = "snake"
	MoveLadder     = "ladder"
	MoveOvershoot  = "overshoot"
	MoveWon        = "won"
	MoveAlreadyWon = "already_won"
)

const (
	StartSquare = 1
	DieFaces    = 6
)

type Game struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	LastRoll int    `json:"last_roll"`
	Message  string `json:"message"`
	Won      bool   `json:"won"`
	Status   string `json:"status"`
	Move     string `json:"move"`
	Rolls    int    `json:"rolls"`
}

// NewGame - returns a game standing on the start square.
func NewGame(id string) *Game {
	return &Game{
		ID:       id,
		Position: StartSquare,
		LastRoll: 1,
		Status:   StatusPlaying,
		Move:     MoveNone,
	}
}

func (that *Game) IsWon() bool {
	return that.Won
}

// MarkWon - moves the game into its terminal state.
func (that *Game) MarkWon() {
	that.Won = true
	that.Status = StatusWon
}
