// internal/game/participant.go
package game

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength caps a display name, in runes, after trimming.
const MaxNameLength = 32

// Sender delivers a named event to exactly one connection. Implementations must
// not block; the dispatch loop calls Send directly.
type Sender interface {
	Send(event EventType, payload any)
}

// Participant is a registered connection with a self-declared display name.
type Participant struct {
	ID     uuid.UUID
	Name   string
	Sender Sender
}

// NormalizeName trims the name and cuts it to MaxNameLength runes. ok is false
// when nothing is left after trimming.
func NormalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	return name, true
}
