package handlers

import (
	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Envelope is the frame shape in both directions.
type Envelope[T any] struct {
	Type game.EventType `json:"type"`
	Data T              `json:"data,omitempty"`
}

type outbound = Envelope[any]

// Client is one websocket connection. It implements game.Sender by queueing
// frames for its write pump.
type Client struct {
	ID      uuid.UUID
	Remote  string
	OutChan chan outbound
	logger  logrus.FieldLogger
}

func newClient(remote string, buffer int, logger logrus.FieldLogger) *Client {
	id := uuid.New()
	return &Client{
		ID:      id,
		Remote:  remote,
		OutChan: make(chan outbound, buffer),
		logger:  logger.WithField("participant", id),
	}
}

// Send queues an event without blocking. A full queue drops the event.
func (c *Client) Send(ev game.EventType, payload any) {
	select {
	case c.OutChan <- outbound{Type: ev, Data: payload}:
	default:
		c.logger.WithField("event", ev).Warn("outbound queue full, dropping event")
	}
}

var _ game.Sender = (*Client)(nil)
