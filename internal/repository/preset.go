package repository

import (
	"context"
	"database/sql"
	"title-service/internal/database"
	"title-service/internal/domain"

	"github.com/rs/zerolog"
)

// PresetRepository owns the preset_titles catalog table.
type PresetRepository struct {
	queue  *database.Queue
	logger zerolog.Logger
}

func NewPresetRepository(queue *database.Queue, logger zerolog.Logger) *PresetRepository {
	return &PresetRepository{queue: queue, logger: logger}
}

func presetKey(titleID string) string {
	return "preset:" + titleID
}

// All returns every enabled preset title keyed by id.
func (r *PresetRepository) All(done func(map[string]domain.TitleData, error)) {
	database.Submit(r.queue, "presets.list", "preset:*", func(ctx context.Context, conn *sql.Conn) (map[string]domain.TitleData, error) {
		rows, err := conn.QueryContext(ctx,
			`SELECT id, title_data FROM preset_titles WHERE enabled = TRUE`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		titles := make(map[string]domain.TitleData)
		for rows.Next() {
			var id, rawData string
			if err := rows.Scan(&id, &rawData); err != nil {
				return nil, err
			}
			data := domain.DecodeTitleData(rawData)
			data.Type = domain.TitlePreset
			titles[id] = data
		}
		return titles, rows.Err()
	}, done)
}

func (r *PresetRepository) Get(titleID string, done func(*domain.TitleData, error)) {
	database.Submit(r.queue, "presets.get", presetKey(titleID), func(ctx context.Context, conn *sql.Conn) (*domain.TitleData, error) {
		var rawData string
		err := conn.QueryRowContext(ctx,
			`SELECT title_data FROM preset_titles WHERE id = ? AND enabled = TRUE`,
			titleID).Scan(&rawData)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		data := domain.DecodeTitleData(rawData)
		data.Type = domain.TitlePreset
		return &data, nil
	}, done)
}

// Save upserts a preset title and re-enables it.
func (r *PresetRepository) Save(titleID string, data domain.TitleData, done func(error)) {
	database.Submit(r.queue, "presets.save", presetKey(titleID), func(ctx context.Context, conn *sql.Conn) (struct{}, error) {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO preset_titles (id, title_data, enabled) VALUES (?, ?, TRUE)
			 ON CONFLICT(id) DO UPDATE SET title_data = excluded.title_data, enabled = TRUE`,
			titleID, data.Encode())
		return struct{}{}, err
	}, func(_ struct{}, err error) {
		if done != nil {
			done(err)
		}
	})
}

func (r *PresetRepository) Delete(titleID string, done func(bool, error)) {
	database.Submit(r.queue, "presets.delete", presetKey(titleID), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		res, err := conn.ExecContext(ctx, `DELETE FROM preset_titles WHERE id = ?`, titleID)
		if err != nil {
			return false, err
		}
		rows, err := res.RowsAffected()
		return rows > 0, err
	}, done)
}

func (r *PresetRepository) Disable(titleID string, done func(bool, error)) {
	database.Submit(r.queue, "presets.disable", presetKey(titleID), func(ctx context.Context, conn *sql.Conn) (bool, error) {
		res, err := conn.ExecContext(ctx, `UPDATE preset_titles SET enabled = FALSE WHERE id = ?`, titleID)
		if err != nil {
			return false, err
		}
		rows, err := res.RowsAffected()
		return rows > 0, err
	}, done)
}
