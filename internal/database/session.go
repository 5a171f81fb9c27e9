package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

const sessionColumns = `id, player_ids, is_active, start_time, end_time`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	var id uuid.UUID
	var seats []uuid.UUID
	if err := row.Scan(&id, &seats, &s.IsActive, &s.StartTime, &s.EndTime); err != nil {
		return nil, err
	}
	s.ID = models.SessionID(id)
	for i := 0; i < models.NumSeats && i < len(seats); i++ {
		s.PlayerIDs[i] = models.PlayerID(seats[i])
	}
	return &s, nil
}

// InsertSession persists a freshly opened session and sets the
// server-assigned start time on it.
func (s *Store) InsertSession(ctx context.Context, session *models.Session) error {
	seats := make([]uuid.UUID, models.NumSeats)
	for i, pid := range session.PlayerIDs {
		seats[i] = uuid.UUID(pid)
	}
	q := `INSERT INTO club_sessions (id, player_ids, is_active)
	      VALUES ($1, $2, $3)
	      RETURNING start_time`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, uuid.UUID(session.ID), seats, session.IsActive).Scan(&session.StartTime)
	})
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// ActiveSession returns the open session, or nil when the table is idle.
func (s *Store) ActiveSession(ctx context.Context) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM club_sessions WHERE is_active LIMIT 1`
	session, err := scanSession(s.pool.QueryRow(ctx, q))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching active session: %w", err)
	}
	return session, nil
}

// GetSession returns the session with the given id, or nil when absent.
func (s *Store) GetSession(ctx context.Context, id models.SessionID) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM club_sessions WHERE id=$1`
	session, err := scanSession(s.pool.QueryRow(ctx, q, uuid.UUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session %s: %w", id, err)
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM club_sessions ORDER BY start_time DESC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// CloseSession flips the session to its terminal state and returns the
// updated row with the server-assigned end time.
func (s *Store) CloseSession(ctx context.Context, id models.SessionID) (*models.Session, error) {
	q := `UPDATE club_sessions
	      SET is_active=false, end_time=NOW()
	      WHERE id=$1 AND is_active
	      RETURNING ` + sessionColumns
	var closed *models.Session
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var scanErr error
		closed, scanErr = scanSession(tx.QueryRow(ctx, q, uuid.UUID(id)))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New("session not open")
	}
	if err != nil {
		return nil, fmt.Errorf("closing session %s: %w", id, err)
	}
	return closed, nil
}

// DeleteSessionCascade removes the session and every round it owns in one
// transaction. Either both deletes commit or neither does; a session
// deleted without its rounds would strand orphans that silently vanish
// from the statistics.
func (s *Store) DeleteSessionCascade(ctx context.Context, id models.SessionID) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM club_rounds WHERE session_id=$1`, uuid.UUID(id)); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM club_sessions WHERE id=$1`, uuid.UUID(id))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errors.New("no such session")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cascade delete of session %s: %w", id, err)
	}
	return nil
}

// ClearAll wipes rounds, sessions and players in one transaction. This is
// the destructive reset behind the admin-gated endpoint.
func (s *Store) ClearAll(ctx context.Context) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM club_rounds`,
			`DELETE FROM club_sessions`,
			`DELETE FROM club_players`,
		} {
			if _, err := tx.Exec(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clearing club data: %w", err)
	}
	return nil
}
