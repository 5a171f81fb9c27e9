package models

import "time"

// Player is a club member on the roster. Identity is immutable once a
// session references the player; name and avatar stay editable.
type Player struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`

	// Avatar is either an emoji glyph or an image URL. Optional.
	Avatar string `json:"avatar,omitempty"`

	JoinedAt time.Time `json:"joinedAt"`
}
