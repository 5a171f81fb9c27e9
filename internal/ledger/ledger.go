// Package ledger owns the session score ledger: session lifecycle, round
// validation and commit, and running-total computation.
package ledger

import (
	"context"
	"fmt"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// Store is the persistence collaborator the ledger writes through. Each
// call is a single document-level atomic write; DeleteSessionCascade is the
// one multi-document operation and must be all-or-nothing. The store
// assigns server timestamps on insert and sets them on the passed value.
type Store interface {
	// ActiveSession returns the open session, or nil when none is open.
	ActiveSession(ctx context.Context) (*models.Session, error)

	// GetSession returns the session with the given id, or nil when absent.
	GetSession(ctx context.Context, id models.SessionID) (*models.Session, error)

	InsertSession(ctx context.Context, s *models.Session) error
	CloseSession(ctx context.Context, id models.SessionID) (*models.Session, error)

	InsertRound(ctx context.Context, r *models.Round) error
	DeleteRound(ctx context.Context, id models.RoundID) error

	// DeleteSessionCascade removes the session and all of its rounds as one
	// atomic group. A partial delete would strand orphan rounds that the
	// statistics fold silently drops, so the store must fail the whole
	// operation rather than leave half of it applied.
	DeleteSessionCascade(ctx context.Context, id models.SessionID) error
}

// Ledger enforces the session state machine on top of a Store. The open
// session is whatever the store says is active; the ledger itself holds no
// session state between calls.
type Ledger struct {
	store Store

	// Strict upgrades the non-zero-sum warning to a hard rejection that no
	// confirmation can override. Default is the confirm-to-commit policy.
	Strict bool
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Open starts a new session with the given roster. The roster must be
// exactly four distinct player ids, and no other session may be open.
func (l *Ledger) Open(ctx context.Context, playerIDs []models.PlayerID) (*models.Session, error) {
	if len(playerIDs) != models.NumSeats {
		return nil, ErrInvalidRoster
	}
	seen := make(map[models.PlayerID]bool, models.NumSeats)
	for _, id := range playerIDs {
		if id.IsNil() || seen[id] {
			return nil, ErrInvalidRoster
		}
		seen[id] = true
	}

	active, err := l.store.ActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking active session: %w", err)
	}
	if active != nil {
		return nil, ErrSessionActive
	}

	s := &models.Session{
		ID:       models.NewSessionID(),
		IsActive: true,
	}
	copy(s.PlayerIDs[:], playerIDs)

	if err := l.store.InsertSession(ctx, s); err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return s, nil
}

// CommitRound appends a validated round to the session's history. A round
// whose scores do not sum to zero is rejected with *NonZeroSumError until
// the caller re-submits with confirm set; under the Strict policy it is
// rejected outright.
func (l *Ledger) CommitRound(ctx context.Context, sessionID models.SessionID, v ValidatedRound, confirm bool) (*models.Round, error) {
	s, err := l.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if s == nil {
		return nil, ErrNoActiveSession
	}
	if !s.IsActive {
		return nil, ErrSessionClosed
	}

	if sum := v.Sum(); sum != 0 {
		if l.Strict || !confirm {
			return nil, &NonZeroSumError{Sum: sum}
		}
	}

	r := &models.Round{
		ID:        models.NewRoundID(),
		SessionID: s.ID,
		Scores:    v.Scores,
		Tags:      v.Tags,
	}
	if err := l.store.InsertRound(ctx, r); err != nil {
		return nil, fmt.Errorf("inserting round: %w", err)
	}
	return r, nil
}

// DeleteRound removes one committed round. Running totals are recomputed
// from the remaining rounds on read; the remaining sequence is not
// re-validated.
func (l *Ledger) DeleteRound(ctx context.Context, id models.RoundID) error {
	if err := l.store.DeleteRound(ctx, id); err != nil {
		return fmt.Errorf("deleting round: %w", err)
	}
	return nil
}

// Close ends the open session. The session's totals become frozen
// historical fact; a closed session is never reopened, only deleted.
func (l *Ledger) Close(ctx context.Context) (*models.Session, error) {
	active, err := l.store.ActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking active session: %w", err)
	}
	if active == nil {
		return nil, ErrNoActiveSession
	}
	closed, err := l.store.CloseSession(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}
	return closed, nil
}

// DeleteSession removes a session and all of its rounds atomically.
func (l *Ledger) DeleteSession(ctx context.Context, id models.SessionID) error {
	if err := l.store.DeleteSessionCascade(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// RunningTotals is the per-seat sum of scores over the given rounds, which
// must all belong to the same session. Addition commutes, so the result is
// independent of commit or deletion order.
func RunningTotals(rounds []models.RoundRecord) [models.NumSeats]int {
	var totals [models.NumSeats]int
	for _, r := range rounds {
		for seat := 0; seat < models.NumSeats; seat++ {
			totals[seat] += r.SeatScore(seat)
		}
	}
	return totals
}
