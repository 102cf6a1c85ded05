package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/snakeladder-backend/internal/apperror"
	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	layout, err := that.uGame.Board()
	if err != nil {
		that.writeError(w, "handleBoard", err)
		return
	}

	that.writeJSON(w, http.StatusOK, layout)
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "handleNewGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.GetGame(r.Context(), chi.URLParam(r, "id"))
	that.writeGame(w, "handleGetGame", game, err)
}

func (that *Server) handleRollDice(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.RollDice(r.Context(), chi.URLParam(r, "id"))
	that.writeGame(w, "handleRollDice", game, err)
}

func (that *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.ResetGame(r.Context(), chi.URLParam(r, "id"))
	that.writeGame(w, "handleResetGame", game, err)
}

func (that *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.EndGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "handleEndGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeGame(w http.ResponseWriter, method string, game *entity.Game, err error) {
	if err != nil {
		that.writeError(w, method, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrGameNotFound.Error()})
	case errors.Is(err, apperror.ErrConcurrentUpdate):
		that.writeJSON(w, http.StatusConflict, errorResponse{Error: apperror.ErrConcurrentUpdate.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
