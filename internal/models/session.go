package models

import "time"

// NumSeats is the fixed table size. Seat order is deal order, set when the
// session opens and never reordered.
const NumSeats = 4

// Session is one continuous sitting of exactly four players. At most one
// session is active at a time; closing is terminal.
type Session struct {
	ID        SessionID          `json:"id"`
	PlayerIDs [NumSeats]PlayerID `json:"playerIds"`
	IsActive  bool               `json:"isActive"`
	StartTime time.Time          `json:"startTime"`
	EndTime   *time.Time         `json:"endTime,omitempty"`
}

// SeatOf returns the seat index of the given player, or -1 if the player is
// not at this table.
func (s *Session) SeatOf(id PlayerID) int {
	for i, pid := range s.PlayerIDs {
		if pid == id {
			return i
		}
	}
	return -1
}
