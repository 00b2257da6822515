package service

import (
	"unicode/utf8"

	"title-service/internal/domain"

	"github.com/google/uuid"
)

// CustomTitleRequest carries a validated-to-be session output: the content
// lines the player entered and the name the derived title id is built from.
type CustomTitleRequest struct {
	PlayerID   uuid.UUID
	PlayerName string
	Contents   []string
	Name       string
	Dynamic    bool
}

func (r CustomTitleRequest) TitleID() string {
	return r.PlayerName + "_" + r.Name
}

// CreateCustomTitle validates and purchases a player-authored title. Dynamic
// titles need between 2 and the configured maximum content lines; every line
// and the name are bounded in length and screened against the forbidden-word
// list case-insensitively. The derived id is checked cache-first, then
// against the database, before payment starts.
func (s *TitleService) CreateCustomTitle(req CustomTitleRequest, done func(domain.PurchaseResult)) {
	if !s.cfg.CustomTitleEnabled {
		done(domain.ResultCustomDisabled)
		return
	}
	if result := s.validateCustomRequest(req); !result.OK() {
		done(result)
		return
	}

	titleID := req.TitleID()
	if s.cache.HasTitle(req.PlayerID, titleID) {
		done(domain.ResultNameDuplicate)
		return
	}

	s.store.TitleExists(req.PlayerID, titleID, func(exists bool, err error) {
		if err != nil {
			done(domain.ResultDatabaseError)
			return
		}
		if exists {
			done(domain.ResultNameDuplicate)
			return
		}
		s.purchaseCustom(req, titleID, done)
	})
}

func (s *TitleService) validateCustomRequest(req CustomTitleRequest) domain.PurchaseResult {
	if len(req.Contents) == 0 {
		return domain.ResultValidationError
	}
	if req.Dynamic {
		if len(req.Contents) < 2 {
			return domain.ResultValidationError
		}
		if len(req.Contents) > s.cfg.DynamicMaxContents {
			return domain.ResultTooLong
		}
	} else if len(req.Contents) != 1 {
		return domain.ResultValidationError
	}

	for _, content := range req.Contents {
		if utf8.RuneCountInString(content) > s.cfg.MaxContentLength {
			return domain.ResultTooLong
		}
		if s.cfg.ContainsForbiddenWord(content) {
			return domain.ResultForbiddenWord
		}
	}

	if utf8.RuneCountInString(req.Name) > s.cfg.MaxNameLength {
		return domain.ResultNameTooLong
	}
	if req.Name == "" {
		return domain.ResultValidationError
	}
	if s.cfg.ContainsForbiddenWord(req.Name) {
		return domain.ResultForbiddenWord
	}
	return domain.ResultSuccess
}

func (s *TitleService) purchaseCustom(req CustomTitleRequest, titleID string, done func(domain.PurchaseResult)) {
	data := domain.NewCustomTitle(req.Contents, s.cfg.DefaultBracketLeft, s.cfg.DefaultBracketRight)
	data.DisplayName = req.Name

	priceMoney := s.cfg.CustomPriceMoney
	pricePoints := s.cfg.CustomPricePoints
	if req.Dynamic {
		priceMoney = s.cfg.DynamicPriceMoney
		pricePoints = s.cfg.DynamicPricePoints
	}

	if result := s.payments.CheckRails(req.PlayerID, priceMoney, pricePoints); !result.OK() {
		done(result)
		return
	}
	s.payments.Execute(req.PlayerID, priceMoney, pricePoints, func(result domain.PurchaseResult) {
		if !result.OK() {
			done(result)
			return
		}
		s.grantTitle(req.PlayerID, titleID, data, done)
	})
}

// CustomPrice reports the price pair a custom title of the given kind costs.
func (s *TitleService) CustomPrice(dynamic bool) (float64, int) {
	if dynamic {
		return s.cfg.DynamicPriceMoney, s.cfg.DynamicPricePoints
	}
	return s.cfg.CustomPriceMoney, s.cfg.CustomPricePoints
}

// CheckTitleIDExists consults the cache first, then the database.
func (s *TitleService) CheckTitleIDExists(playerID uuid.UUID, titleID string, done func(bool)) {
	if s.cache.HasTitle(playerID, titleID) {
		done(true)
		return
	}
	s.store.TitleExists(playerID, titleID, func(exists bool, err error) {
		done(err == nil && exists)
	})
}
