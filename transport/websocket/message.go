package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

const (
	actionNewGame = "game:new"
	actionState   = "game:state"
	actionRoll    = "game:roll"
	actionReset   = "game:reset"
	actionEnd     = "game:end"
	actionUpdate  = "game:update"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

type gameRef struct {
	ID string `json:"id"`
}

type requestPayload struct {
	Game *gameRef `json:"game"`
}

// gameID - extracts payload.game.id, empty when absent.
func (that *Message) gameID() string {
	if len(that.Payload) == 0 {
		return ""
	}

	var payload requestPayload
	if err := json.Unmarshal(that.Payload, &payload); err != nil || payload.Game == nil {
		return ""
	}

	return payload.Game.ID
}
