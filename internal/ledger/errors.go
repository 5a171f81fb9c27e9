package ledger

import (
	"errors"
	"fmt"
)

// Structural failures. These are returned to the caller and must be
// surfaced to the user; they never corrupt stored data.
var (
	// ErrInvalidRoster means the roster handed to Open was not exactly
	// four distinct player ids.
	ErrInvalidRoster = errors.New("ledger: roster must be exactly 4 distinct players")

	// ErrSessionActive means another session is already open. Sessions are
	// exclusive: exactly one may be active at a time.
	ErrSessionActive = errors.New("ledger: another session is already open")

	// ErrSessionClosed means a write targeted a session that has already
	// been closed. Closed sessions are terminal and read-only.
	ErrSessionClosed = errors.New("ledger: session is closed")

	// ErrNoActiveSession means a close or commit found nothing open.
	ErrNoActiveSession = errors.New("ledger: no active session")
)

// NonZeroSumError is the soft rejection for a round whose scores do not sum
// to zero. The caller may retry the commit with explicit confirmation;
// unusual rule variants legitimately produce non-zero-sum rounds, so the
// ledger never silently drops them.
type NonZeroSumError struct {
	Sum int
}

func (e *NonZeroSumError) Error() string {
	return fmt.Sprintf("ledger: round scores sum to %d, not 0; confirmation required", e.Sum)
}
