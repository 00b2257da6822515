package service

import (
	"context"
	"sync"
	"title-service/internal/domain"
	"title-service/internal/repository"

	"github.com/rs/zerolog"
)

// PresetService keeps the enabled preset-title catalog in memory, warmed from
// the database at startup and updated through the admin operations.
type PresetService struct {
	repo   *repository.PresetRepository
	logger zerolog.Logger

	mu     sync.RWMutex
	titles map[string]domain.TitleData
}

func NewPresetService(repo *repository.PresetRepository, logger zerolog.Logger) *PresetService {
	return &PresetService{
		repo:   repo,
		logger: logger,
		titles: make(map[string]domain.TitleData),
	}
}

// Warm loads the catalog, blocking until the repository answers or ctx ends.
func (s *PresetService) Warm(ctx context.Context) error {
	errc := make(chan error, 1)
	s.repo.All(func(titles map[string]domain.TitleData, err error) {
		if err == nil {
			s.mu.Lock()
			s.titles = titles
			s.mu.Unlock()
			s.logger.Info().Int("count", len(titles)).Msg("preset titles loaded")
		}
		errc <- err
	})
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PresetService) Preset(titleID string) (domain.TitleData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.titles[titleID]
	return data, ok
}

func (s *PresetService) Presets() map[string]domain.TitleData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.TitleData, len(s.titles))
	for id, data := range s.titles {
		out[id] = data
	}
	return out
}

// Save upserts a preset title, reflecting it in the catalog once persisted.
func (s *PresetService) Save(titleID string, data domain.TitleData, done func(bool)) {
	data.Type = domain.TitlePreset
	s.repo.Save(titleID, data, func(err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("title_id", titleID).Msg("failed to save preset title")
			done(false)
			return
		}
		s.mu.Lock()
		s.titles[titleID] = data
		s.mu.Unlock()
		done(true)
	})
}

func (s *PresetService) Delete(titleID string, done func(bool)) {
	s.repo.Delete(titleID, func(removed bool, err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("title_id", titleID).Msg("failed to delete preset title")
			done(false)
			return
		}
		if removed {
			s.mu.Lock()
			delete(s.titles, titleID)
			s.mu.Unlock()
		}
		done(removed)
	})
}

// Disable keeps the row but removes the title from the purchasable catalog.
func (s *PresetService) Disable(titleID string, done func(bool)) {
	s.repo.Disable(titleID, func(disabled bool, err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("title_id", titleID).Msg("failed to disable preset title")
			done(false)
			return
		}
		if disabled {
			s.mu.Lock()
			delete(s.titles, titleID)
			s.mu.Unlock()
		}
		done(disabled)
	})
}
