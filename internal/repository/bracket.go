package repository

import (
	"context"
	"database/sql"
	"time"
	"title-service/internal/database"
	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BracketRepository owns the player_brackets ownership table. The bracket
// catalog itself lives in configuration, not the database.
type BracketRepository struct {
	queue  *database.Queue
	logger zerolog.Logger
}

func NewBracketRepository(queue *database.Queue, logger zerolog.Logger) *BracketRepository {
	return &BracketRepository{queue: queue, logger: logger}
}

func (r *BracketRepository) PlayerBrackets(playerID uuid.UUID, done func([]domain.BracketRecord, error)) {
	database.Submit(r.queue, "brackets.list", playerID.String(), func(ctx context.Context, conn *sql.Conn) ([]domain.BracketRecord, error) {
		rows, err := conn.QueryContext(ctx,
			`SELECT bracket_id, obtained_at FROM player_brackets WHERE player_uuid = ?`,
			playerID.String())
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var records []domain.BracketRecord
		for rows.Next() {
			var (
				bracketID  string
				obtainedAt int64
			)
			if err := rows.Scan(&bracketID, &obtainedAt); err != nil {
				return nil, err
			}
			records = append(records, domain.BracketRecord{
				BracketID:  bracketID,
				ObtainedAt: time.UnixMilli(obtainedAt),
			})
		}
		return records, rows.Err()
	}, done)
}

// AddPlayerBracket is an idempotent insert; granting an owned bracket again
// is absorbed rather than surfaced as a conflict.
func (r *BracketRepository) AddPlayerBracket(playerID uuid.UUID, bracketID string, done func(error)) {
	database.Submit(r.queue, "brackets.add", playerID.String(), func(ctx context.Context, conn *sql.Conn) (struct{}, error) {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO player_brackets (player_uuid, bracket_id, obtained_at) VALUES (?, ?, ?)
			 ON CONFLICT(player_uuid, bracket_id) DO NOTHING`,
			playerID.String(), bracketID, time.Now().UnixMilli())
		return struct{}{}, err
	}, func(_ struct{}, err error) {
		if done != nil {
			done(err)
		}
	})
}

func (r *BracketRepository) RemovePlayerBracket(playerID uuid.UUID, bracketID string, done func(bool, error)) {
	database.Submit(r.queue, "brackets.remove", playerID.String(), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		res, err := conn.ExecContext(ctx,
			`DELETE FROM player_brackets WHERE player_uuid = ? AND bracket_id = ?`,
			playerID.String(), bracketID)
		if err != nil {
			return false, err
		}
		rows, err := res.RowsAffected()
		return rows > 0, err
	}, done)
}

func (r *BracketRepository) HasBracket(playerID uuid.UUID, bracketID string, done func(bool, error)) {
	database.Submit(r.queue, "brackets.has", playerID.String(), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		var one int
		err := conn.QueryRowContext(ctx,
			`SELECT 1 FROM player_brackets WHERE player_uuid = ? AND bracket_id = ?`,
			playerID.String(), bracketID).Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}, done)
}
