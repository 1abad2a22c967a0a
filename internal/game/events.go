// internal/game/events.go
package game

import (
	"github.com/Luckmuc/TicTacToe/internal/rules"
	"github.com/google/uuid"
)

// EventType names an inbound or outbound message on the wire.
type EventType string

// Outbound events.
const (
	EventRegistered           EventType = "registered"
	EventPong                 EventType = "pong"
	EventSearching            EventType = "searching"
	EventSearchCancelled      EventType = "searchCancelled"
	EventLobbyJoined          EventType = "lobbyJoined"
	EventSettingsUpdated      EventType = "settingsUpdated"
	EventReadyStatusUpdated   EventType = "readyStatusUpdated"
	EventOpponentLeftLobby    EventType = "opponentLeftLobby"
	EventGameStart            EventType = "gameStart"
	EventMoveMade             EventType = "moveMade"
	EventGameEnd              EventType = "gameEnd"
	EventNextMatch            EventType = "nextMatch"
	EventSeriesEnd            EventType = "seriesEnd"
	EventOpponentDisconnected EventType = "opponentDisconnected"

	EventParkourSearching       EventType = "parkourSearching"
	EventParkourSearchCancelled EventType = "parkourSearchCancelled"
	EventParkourGameStart       EventType = "parkourGameStart"
	EventParkourPlayerMove      EventType = "parkourPlayerMove"
	EventParkourNextLevel       EventType = "parkourNextLevel"
	EventParkourGameComplete    EventType = "parkourGameComplete"
	EventParkourOpponentLeft    EventType = "parkourOpponentLeft"
)

// Inbound events.
const (
	EventRegister             EventType = "register"
	EventPing                 EventType = "ping"
	EventPlayBot              EventType = "playBot"
	EventSearchMatch          EventType = "searchMatch"
	EventCancelSearch         EventType = "cancelSearch"
	EventUpdateSettings       EventType = "updateSettings"
	EventSetReady             EventType = "setReady"
	EventLeaveLobby           EventType = "leaveLobby"
	EventMakeMove             EventType = "makeMove"
	EventLeaveGame            EventType = "leaveGame"
	EventSearchParkour        EventType = "searchParkour"
	EventCancelParkourSearch  EventType = "cancelParkourSearch"
	EventParkourMove          EventType = "parkourMove"
	EventParkourLevelComplete EventType = "parkourLevelComplete"
	EventLeaveParkour         EventType = "leaveParkour"
)

// CancelReasonExpired is sent when the sweeper evicts a stale search.
const CancelReasonExpired = "expired"

type RegisteredPayload struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"username"`
}

type SearchingPayload struct {
	Options Options `json:"options"`
}

type SearchCancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

type LobbyJoinedPayload struct {
	LobbyID      uuid.UUID `json:"lobbyId"`
	Role         Role      `json:"role"`
	IsPlayer1    bool      `json:"isPlayer1"`
	Opponent     string    `json:"opponent"`
	YourUsername string    `json:"yourUsername"`
	Settings     Options   `json:"settings"`
}

type SettingsUpdatedPayload struct {
	Settings  Options `json:"settings"`
	UpdatedBy string  `json:"updatedBy"`
}

type ReadyStatusPayload struct {
	Player1Ready bool   `json:"player1Ready"`
	Player2Ready bool   `json:"player2Ready"`
	Player1Name  string `json:"player1Name"`
	Player2Name  string `json:"player2Name"`
}

type GameStartPayload struct {
	GameID           uuid.UUID  `json:"gameId"`
	Symbol           rules.Mark `json:"symbol"`
	Mode             Kind       `json:"mode"`
	Opponent         string     `json:"opponent"`
	OpponentUsername string     `json:"opponentUsername"`
	YourUsername     string     `json:"yourUsername"`
	MatchCount       int        `json:"matchCount"`
	Competitive      bool       `json:"competitive"`
	Role             Role       `json:"role"`
	IsPlayer1        bool       `json:"isPlayer1"`
}

type MoveMadePayload struct {
	Position int         `json:"position"`
	Symbol   rules.Mark  `json:"symbol"`
	Board    rules.Board `json:"board"`
}

// GameEndPayload ends one match. Winner, WinningLine and WinnerName are null on
// a draw.
type GameEndPayload struct {
	Winner      *rules.Mark `json:"winner"`
	Draw        bool        `json:"draw"`
	WinningLine *rules.Line `json:"winningLine"`
	WinnerName  *string     `json:"winnerName"`
}

type NextMatchPayload struct {
	MatchNumber  int        `json:"matchNumber"`
	TotalMatches int        `json:"totalMatches"`
	Scores       Scores     `json:"scores"`
	Symbol       rules.Mark `json:"symbol"`
	IsPlayer1    bool       `json:"isPlayer1"`
}

type SeriesEndPayload struct {
	Scores      Scores `json:"scores"`
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name"`
}

type OpponentDisconnectedPayload struct {
	GameID uuid.UUID `json:"gameId"`
}

type ParkourGameStartPayload struct {
	GameID      uuid.UUID `json:"gameId"`
	Player1ID   uuid.UUID `json:"player1Id"`
	Player2ID   uuid.UUID `json:"player2Id"`
	Player1Name string    `json:"player1Name"`
	Player2Name string    `json:"player2Name"`
	Teammate    string    `json:"teammate"`
}

// ParkourMove is the opaque position update a client reports. The server relays
// it without interpretation.
type ParkourMove struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
}

type ParkourPlayerMovePayload struct {
	PlayerID uuid.UUID `json:"playerId"`
	ParkourMove
}

type ParkourNextLevelPayload struct {
	Level int `json:"level"`
}

type ParkourGameCompletePayload struct {
	GameID uuid.UUID `json:"gameId"`
	Levels int       `json:"levels"`
}
