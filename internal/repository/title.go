package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"title-service/internal/database"
	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TitleRepository owns all SQL touching player_titles. Every operation is a
// unit of work on the write queue, keyed by player so sequential submissions
// for one player execute in order.
type TitleRepository struct {
	queue  *database.Queue
	logger zerolog.Logger
}

func NewTitleRepository(queue *database.Queue, logger zerolog.Logger) *TitleRepository {
	return &TitleRepository{queue: queue, logger: logger}
}

func (r *TitleRepository) PlayerTitles(playerID uuid.UUID, done func([]domain.PlayerTitleRecord, error)) {
	database.Submit(r.queue, "titles.list", playerID.String(), func(ctx context.Context, conn *sql.Conn) ([]domain.PlayerTitleRecord, error) {
		rows, err := conn.QueryContext(ctx,
			`SELECT title_id, title_data, on_use, obtained_at FROM player_titles WHERE player_uuid = ?`,
			playerID.String())
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var records []domain.PlayerTitleRecord
		for rows.Next() {
			var (
				titleID    string
				rawData    string
				onUse      bool
				obtainedAt int64
			)
			if err := rows.Scan(&titleID, &rawData, &onUse, &obtainedAt); err != nil {
				return nil, err
			}
			records = append(records, domain.PlayerTitleRecord{
				TitleID:    titleID,
				Data:       domain.DecodeTitleData(rawData),
				OnUse:      onUse,
				ObtainedAt: time.UnixMilli(obtainedAt),
			})
		}
		return records, rows.Err()
	}, done)
}

func (r *TitleRepository) CurrentTitle(playerID uuid.UUID, done func(*domain.PlayerTitleRecord, error)) {
	database.Submit(r.queue, "titles.current", playerID.String(), func(ctx context.Context, conn *sql.Conn) (*domain.PlayerTitleRecord, error) {
		var (
			titleID    string
			rawData    string
			obtainedAt int64
		)
		err := conn.QueryRowContext(ctx,
			`SELECT title_id, title_data, obtained_at FROM player_titles WHERE player_uuid = ? AND on_use = TRUE`,
			playerID.String()).Scan(&titleID, &rawData, &obtainedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &domain.PlayerTitleRecord{
			TitleID:    titleID,
			Data:       domain.DecodeTitleData(rawData),
			OnUse:      true,
			ObtainedAt: time.UnixMilli(obtainedAt),
		}, nil
	}, done)
}

// AddOrUpdateTitle upserts a title row keyed by (player, title id). A
// pre-existing row keeps its on_use flag and obtained_at instant; only the
// data snapshot is replaced.
func (r *TitleRepository) AddOrUpdateTitle(playerID uuid.UUID, titleID string, data domain.TitleData, done func(error)) {
	database.Submit(r.queue, "titles.upsert", playerID.String(), func(ctx context.Context, conn *sql.Conn) (struct{}, error) {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO player_titles (player_uuid, title_id, title_data, on_use, obtained_at)
			 VALUES (?, ?, ?, FALSE, ?)
			 ON CONFLICT(player_uuid, title_id) DO UPDATE SET title_data = excluded.title_data`,
			playerID.String(), titleID, data.Encode(), time.Now().UnixMilli())
		return struct{}{}, err
	}, func(_ struct{}, err error) {
		if done != nil {
			done(err)
		}
	})
}

// SetCurrentTitle is the only transactional operation: clear on_use on all of
// the player's rows, then set it on the target. Commits only when the second
// statement affected exactly one row; anything else rolls back and reports
// failure, so a crash between the statements can never leave zero or two
// active titles.
func (r *TitleRepository) SetCurrentTitle(playerID uuid.UUID, titleID string, done func(bool, error)) {
	database.Submit(r.queue, "titles.set_current", playerID.String(), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return false, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			`UPDATE player_titles SET on_use = FALSE WHERE player_uuid = ?`,
			playerID.String()); err != nil {
			return false, err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE player_titles SET on_use = TRUE WHERE player_uuid = ? AND title_id = ?`,
			playerID.String(), titleID)
		if err != nil {
			return false, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		if rows != 1 {
			return false, nil
		}
		return true, tx.Commit()
	}, done)
}

// ClearCurrentTitle is monotonic and safe without a transaction.
func (r *TitleRepository) ClearCurrentTitle(playerID uuid.UUID, done func(error)) {
	database.Submit(r.queue, "titles.clear_current", playerID.String(), func(ctx context.Context, conn *sql.Conn) (struct{}, error) {
		_, err := conn.ExecContext(ctx,
			`UPDATE player_titles SET on_use = FALSE WHERE player_uuid = ?`,
			playerID.String())
		return struct{}{}, err
	}, func(_ struct{}, err error) {
		if done != nil {
			done(err)
		}
	})
}

func (r *TitleRepository) RemovePlayerTitle(playerID uuid.UUID, titleID string, done func(bool, error)) {
	database.Submit(r.queue, "titles.remove", playerID.String(), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		res, err := conn.ExecContext(ctx,
			`DELETE FROM player_titles WHERE player_uuid = ? AND title_id = ?`,
			playerID.String(), titleID)
		if err != nil {
			return false, err
		}
		rows, err := res.RowsAffected()
		return rows > 0, err
	}, done)
}

func (r *TitleRepository) TitleExists(playerID uuid.UUID, titleID string, done func(bool, error)) {
	database.Submit(r.queue, "titles.exists", playerID.String(), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		var one int
		err := conn.QueryRowContext(ctx,
			`SELECT 1 FROM player_titles WHERE player_uuid = ? AND title_id = ?`,
			playerID.String(), titleID).Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}, done)
}

func (r *TitleRepository) TitleCount(playerID uuid.UUID, done func(int, error)) {
	database.Submit(r.queue, "titles.count", playerID.String(), func(ctx context.Context, conn *sql.Conn) (int, error) {
		var count int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM player_titles WHERE player_uuid = ?`,
			playerID.String()).Scan(&count)
		return count, err
	}, done)
}
