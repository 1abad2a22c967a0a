// internal/game/lobby_store.go
package game

import (
	"github.com/google/uuid"
)

// LobbyStore holds lobbies in memory only.
type LobbyStore struct {
	lobbies map[uuid.UUID]*Lobby
}

// NewLobbyStore returns an empty store.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[uuid.UUID]*Lobby),
	}
}

// Add stores the lobby.
func (s *LobbyStore) Add(lobby *Lobby) {
	s.lobbies[lobby.ID] = lobby
}

// Delete removes the lobby.
func (s *LobbyStore) Delete(id uuid.UUID) {
	delete(s.lobbies, id)
}

// Get retrieves a lobby if it exists.
func (s *LobbyStore) Get(id uuid.UUID) (*Lobby, bool) {
	l, ok := s.lobbies[id]
	return l, ok
}

func (s *LobbyStore) Len() int { return len(s.lobbies) }

// FindByParticipant returns the lobbies id is a member of.
func (s *LobbyStore) FindByParticipant(id uuid.UUID) []*Lobby {
	var out []*Lobby
	for _, l := range s.lobbies {
		if l.member(id) >= 0 {
			out = append(out, l)
		}
	}
	return out
}
