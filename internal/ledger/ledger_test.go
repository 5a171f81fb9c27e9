package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// memStore is an in-memory Store standing in for the database collaborator.
type memStore struct {
	sessions map[models.SessionID]*models.Session
	rounds   map[models.RoundID]*models.Round
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[models.SessionID]*models.Session),
		rounds:   make(map[models.RoundID]*models.Round),
	}
}

func (m *memStore) ActiveSession(ctx context.Context) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetSession(ctx context.Context, id models.SessionID) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) InsertSession(ctx context.Context, s *models.Session) error {
	s.StartTime = time.Now()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) CloseSession(ctx context.Context, id models.SessionID) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	now := time.Now()
	s.IsActive = false
	s.EndTime = &now
	cp := *s
	return &cp, nil
}

func (m *memStore) InsertRound(ctx context.Context, r *models.Round) error {
	r.Timestamp = time.Now()
	cp := *r
	m.rounds[r.ID] = &cp
	return nil
}

func (m *memStore) DeleteRound(ctx context.Context, id models.RoundID) error {
	delete(m.rounds, id)
	return nil
}

func (m *memStore) DeleteSessionCascade(ctx context.Context, id models.SessionID) error {
	for rid, r := range m.rounds {
		if r.SessionID == id {
			delete(m.rounds, rid)
		}
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) sessionRecords(id models.SessionID) []models.RoundRecord {
	var out []models.RoundRecord
	for _, r := range m.rounds {
		if r.SessionID == id {
			out = append(out, r.Record())
		}
	}
	return out
}

func roster(n int) []models.PlayerID {
	ids := make([]models.PlayerID, n)
	for i := range ids {
		ids[i] = models.NewPlayerID()
	}
	return ids
}

func zeroSumRound(scores [models.NumSeats]int) ValidatedRound {
	return ValidatedRound{Scores: scores}
}

func TestOpenRejectsBadRosters(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	_, err := l.Open(ctx, roster(3))
	assert.ErrorIs(t, err, ErrInvalidRoster, "3 players")

	_, err = l.Open(ctx, roster(5))
	assert.ErrorIs(t, err, ErrInvalidRoster, "5 players")

	ids := roster(4)
	ids[3] = ids[0]
	_, err = l.Open(ctx, ids)
	assert.ErrorIs(t, err, ErrInvalidRoster, "duplicate player")

	ids = roster(4)
	ids[2] = models.PlayerID{}
	_, err = l.Open(ctx, ids)
	assert.ErrorIs(t, err, ErrInvalidRoster, "nil player id")
}

func TestOpenIsExclusive(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)
	require.True(t, s.IsActive)
	require.False(t, s.StartTime.IsZero(), "store must assign start time")

	_, err = l.Open(ctx, roster(4))
	assert.ErrorIs(t, err, ErrSessionActive)

	// Closing frees the table for the next sitting.
	_, err = l.Close(ctx)
	require.NoError(t, err)
	_, err = l.Open(ctx, roster(4))
	assert.NoError(t, err)
}

func TestCommitAfterCloseRejected(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)

	closed, err := l.Close(ctx)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.EndTime)

	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{10, -10, 0, 0}), false)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCommitUnknownSession(t *testing.T) {
	l := New(newMemStore())
	_, err := l.CommitRound(context.Background(), models.NewSessionID(), ValidatedRound{}, false)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestCloseWithNothingOpen(t *testing.T) {
	l := New(newMemStore())
	_, err := l.Close(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestNonZeroSumNeedsConfirmation(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()
	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)

	// A balanced round commits without ceremony.
	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{50, -20, -20, -10}), false)
	assert.NoError(t, err)

	// An unbalanced one is held until the caller confirms.
	unbalanced := zeroSumRound([4]int{50, -20, -20, 0})
	_, err = l.CommitRound(ctx, s.ID, unbalanced, false)
	var nzs *NonZeroSumError
	require.ErrorAs(t, err, &nzs)
	assert.Equal(t, 10, nzs.Sum)

	r, err := l.CommitRound(ctx, s.ID, unbalanced, true)
	require.NoError(t, err)
	assert.Equal(t, [4]int{50, -20, -20, 0}, r.Scores)
}

func TestStrictPolicyRejectsNonZeroSum(t *testing.T) {
	l := New(newMemStore())
	l.Strict = true
	ctx := context.Background()
	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)

	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{1, 0, 0, 0}), true)
	var nzs *NonZeroSumError
	assert.ErrorAs(t, err, &nzs, "confirmation must not override strict mode")
}

func TestRunningTotalsCommuteAcrossCommitAndDelete(t *testing.T) {
	store := newMemStore()
	l := New(store)
	ctx := context.Background()
	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)

	r1, err := l.CommitRound(ctx, s.ID, zeroSumRound([4]int{10, -10, 0, 0}), false)
	require.NoError(t, err)
	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{-5, 5, 0, 0}), false)
	require.NoError(t, err)
	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{0, 0, 20, -20}), false)
	require.NoError(t, err)

	assert.Equal(t, [4]int{5, -5, 20, -20}, RunningTotals(store.sessionRecords(s.ID)))

	// Deleting the first round excludes exactly its contribution, no matter
	// where it sat in commit order.
	require.NoError(t, l.DeleteRound(ctx, r1.ID))
	assert.Equal(t, [4]int{-5, 5, 20, -20}, RunningTotals(store.sessionRecords(s.ID)))
}

func TestDeleteSessionCascades(t *testing.T) {
	store := newMemStore()
	l := New(store)
	ctx := context.Background()
	s, err := l.Open(ctx, roster(4))
	require.NoError(t, err)

	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{10, -10, 0, 0}), false)
	require.NoError(t, err)
	_, err = l.CommitRound(ctx, s.ID, zeroSumRound([4]int{0, 0, 5, -5}), false)
	require.NoError(t, err)

	require.NoError(t, l.DeleteSession(ctx, s.ID))
	assert.Empty(t, store.rounds, "rounds must go with their session")
	assert.Empty(t, store.sessions)
}
