// internal/models/ids.go
package models

import "github.com/google/uuid"

// PlayerID, SessionID and RoundID are distinct types over uuid.UUID so the
// compiler rejects cross-entity mixups (e.g. passing a round id where a
// session id is expected).
type (
	PlayerID  uuid.UUID
	SessionID uuid.UUID
	RoundID   uuid.UUID
)

func NewPlayerID() PlayerID   { return PlayerID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }
func NewRoundID() RoundID     { return RoundID(uuid.New()) }

func ParsePlayerID(s string) (PlayerID, error) {
	u, err := uuid.Parse(s)
	return PlayerID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	return SessionID(u), err
}

func ParseRoundID(s string) (RoundID, error) {
	u, err := uuid.Parse(s)
	return RoundID(u), err
}

func (id PlayerID) String() string  { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id RoundID) String() string   { return uuid.UUID(id).String() }

func (id PlayerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RoundID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshalling delegates to uuid so the ids read as plain UUID strings
// in JSON documents.

func (id PlayerID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *PlayerID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = PlayerID(u)
	return nil
}

func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id RoundID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *RoundID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = RoundID(u)
	return nil
}
