package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is a seat at a table as the service sees it. The engine tracks the
// same player by ID.String().
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`

	User *User `json:"-"`
}

// Name returns the display name for the player.
func (p *Player) Name() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return p.ID.String()[:8]
}
