package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// CreatePlayer inserts a roster member. The store assigns the id when nil
// and the server-side join timestamp.
func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	if p.ID.IsNil() {
		p.ID = models.NewPlayerID()
	}
	q := `INSERT INTO club_players (id, name, avatar)
	      VALUES ($1, $2, $3)
	      RETURNING joined_at`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, uuid.UUID(p.ID), p.Name, p.Avatar).Scan(&p.JoinedAt)
	})
	if err != nil {
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

// UpdatePlayer edits the display fields only. Identity is immutable once a
// session references the player.
func (s *Store) UpdatePlayer(ctx context.Context, id models.PlayerID, name, avatar string) error {
	q := `UPDATE club_players SET name=$1, avatar=$2 WHERE id=$3`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, name, avatar, uuid.UUID(id))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errors.New("no such player")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating player %s: %w", id, err)
	}
	return nil
}

// GetPlayer returns the player, or nil when absent.
func (s *Store) GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error) {
	var p models.Player
	var raw uuid.UUID
	q := `SELECT id, name, avatar, joined_at FROM club_players WHERE id=$1`
	err := s.pool.QueryRow(ctx, q, uuid.UUID(id)).Scan(&raw, &p.Name, &p.Avatar, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching player %s: %w", id, err)
	}
	p.ID = models.PlayerID(raw)
	return &p, nil
}

// ListPlayers returns the full roster in join order.
func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	q := `SELECT id, name, avatar, joined_at FROM club_players ORDER BY joined_at, id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		var raw uuid.UUID
		if err := rows.Scan(&raw, &p.Name, &p.Avatar, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		p.ID = models.PlayerID(raw)
		players = append(players, p)
	}
	return players, rows.Err()
}
