package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

func scanRoundRecord(row pgx.Row) (*models.RoundRecord, error) {
	var rec models.RoundRecord
	var id, sessionID uuid.UUID
	var scores, tags, roles []byte
	if err := row.Scan(&id, &sessionID, &scores, &tags, &roles, &rec.Timestamp); err != nil {
		return nil, err
	}
	rec.ID = models.RoundID(id)
	rec.SessionID = models.SessionID(sessionID)

	// Malformed stored JSON degrades to an empty field; the readers treat
	// missing data as "nothing known", never as an error.
	if err := json.Unmarshal(scores, &rec.Scores); err != nil {
		rec.Scores = nil
	}
	if tags != nil {
		if err := json.Unmarshal(tags, &rec.Tags); err != nil {
			rec.Tags = nil
		}
	}
	if roles != nil {
		if err := json.Unmarshal(roles, &rec.Roles); err != nil {
			rec.Roles = nil
		}
	}
	return &rec, nil
}

// InsertRound persists a committed round and sets the server-assigned
// timestamp on it. New rounds always write the multi-tag encoding.
func (s *Store) InsertRound(ctx context.Context, r *models.Round) error {
	rec := r.Record()
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("encoding scores: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	q := `INSERT INTO club_rounds (id, session_id, scores, tags)
	      VALUES ($1, $2, $3, $4)
	      RETURNING ts`
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, uuid.UUID(r.ID), uuid.UUID(r.SessionID), scores, tags).Scan(&r.Timestamp)
	})
	if err != nil {
		return fmt.Errorf("inserting round: %w", err)
	}
	return nil
}

// DeleteRound removes a single round.
func (s *Store) DeleteRound(ctx context.Context, id models.RoundID) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `DELETE FROM club_rounds WHERE id=$1`, uuid.UUID(id))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("deleting round %s: %w", id, err)
	}
	return nil
}

const roundColumns = `id, session_id, scores, tags, roles, ts`

// ListRounds returns the full round history, newest first.
func (s *Store) ListRounds(ctx context.Context) ([]models.RoundRecord, error) {
	q := `SELECT ` + roundColumns + ` FROM club_rounds ORDER BY ts DESC`
	return s.queryRounds(ctx, q)
}

// ListSessionRounds returns one session's rounds, newest first.
func (s *Store) ListSessionRounds(ctx context.Context, id models.SessionID) ([]models.RoundRecord, error) {
	q := `SELECT ` + roundColumns + ` FROM club_rounds WHERE session_id=$1 ORDER BY ts DESC`
	return s.queryRounds(ctx, q, uuid.UUID(id))
}

func (s *Store) queryRounds(ctx context.Context, q string, args ...any) ([]models.RoundRecord, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}
	defer rows.Close()

	var records []models.RoundRecord
	for rows.Next() {
		rec, err := scanRoundRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning round: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Snapshot loads the three collections the watch hub fans out. Reads are
// independent queries, not a repeatable-read transaction: the hub reloads
// on every change notice, so a torn read heals on the next tick.
func (s *Store) Snapshot(ctx context.Context) ([]models.Player, []models.Session, []models.RoundRecord, error) {
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	rounds, err := s.ListRounds(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return players, sessions, rounds, nil
}
