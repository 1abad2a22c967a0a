package handlers

import (
	"encoding/json"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/google/uuid"
)

// registerData accepts either a bare string or {"username": "..."}.
type registerData string

func (r *registerData) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = registerData(s)
		return nil
	}
	var obj struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = registerData(obj.Username)
	return nil
}

type lobbyRef struct {
	LobbyID uuid.UUID `json:"lobbyId"`
}

type settingsData struct {
	LobbyID  uuid.UUID    `json:"lobbyId"`
	Settings game.Options `json:"settings"`
}

type readyData struct {
	LobbyID uuid.UUID `json:"lobbyId"`
	Ready   bool      `json:"ready"`
}

type gameRef struct {
	GameID uuid.UUID `json:"gameId"`
}

// moveData keeps Position a pointer so a missing field is not read as cell 0.
type moveData struct {
	GameID   uuid.UUID `json:"gameId"`
	Position *int      `json:"position"`
}

type parkourMoveData struct {
	GameID uuid.UUID `json:"gameId"`
	game.ParkourMove
}
