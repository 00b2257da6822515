package session

import (
	"strings"
	"unicode/utf8"

	"title-service/internal/constants"
	"title-service/internal/domain"
	"title-service/internal/service"

	"github.com/google/uuid"
)

type ReplyCode int

const (
	ReplyNoSession ReplyCode = iota
	ReplyCancelled
	ReplyInvalidChoice
	ReplyPromptContent
	ReplyContentAdded
	ReplyNeedMoreContents
	ReplyContentLimitReached
	ReplyTooLong
	ReplyForbidden
	ReplyPromptName
	ReplyNameTooLong
	ReplyNameDuplicate
	ReplyAwaitConfirm
	ReplyInvalidConfirm
	ReplyCommitted
)

// Reply is the typed outcome of one input line, in place of the original
// chat messages.
type Reply struct {
	Code         ReplyCode
	Stage        Stage
	ContentCount int
	TitleID      string
	PriceMoney   float64
	PricePoints  int
	Result       domain.PurchaseResult
}

// HandleInput advances the player's session with one line of input and
// delivers exactly one Reply. Every accepted transition refreshes the
// session's timeout clock; the cancel keyword deletes the session from any
// stage.
func (m *Manager) HandleInput(playerID uuid.UUID, input string, done func(Reply)) {
	input = strings.TrimSpace(input)

	m.mu.Lock()
	s, ok := m.sessions[playerID]
	if ok && s.expired(m.now(), m.cfg.SessionTimeout) {
		delete(m.sessions, playerID)
		ok = false
	}
	if !ok {
		m.mu.Unlock()
		done(Reply{Code: ReplyNoSession})
		return
	}

	if strings.EqualFold(input, constants.CancelKeyword) {
		delete(m.sessions, playerID)
		m.mu.Unlock()
		done(Reply{Code: ReplyCancelled})
		return
	}

	switch s.Stage {
	case StageSelectType:
		m.handleSelectType(s, input, done)
	case StageInputContent:
		m.handleContentInput(s, input, done)
	case StageInputName:
		m.handleNameInput(s, input, done)
	case StageWaitingConfirm:
		m.handleConfirm(s, input, done)
	default:
		m.mu.Unlock()
		done(Reply{Code: ReplyNoSession})
	}
}

// handleSelectType runs with m.mu held and releases it before done.
func (m *Manager) handleSelectType(s *Session, input string, done func(Reply)) {
	var dynamic bool
	switch {
	case input == constants.StaticTypeChoice || strings.EqualFold(input, "static"):
		dynamic = false
	case input == constants.DynamicTypeChoice || strings.EqualFold(input, "dynamic"):
		dynamic = true
	default:
		m.mu.Unlock()
		done(Reply{Code: ReplyInvalidChoice, Stage: StageSelectType})
		return
	}

	s.Dynamic = dynamic
	s.Stage = StageInputContent
	s.refresh(m.now())
	m.mu.Unlock()

	money, points := m.creator.CustomPrice(dynamic)
	done(Reply{Code: ReplyPromptContent, Stage: StageInputContent, PriceMoney: money, PricePoints: points})
}

// handleContentInput runs with m.mu held and releases it before done.
func (m *Manager) handleContentInput(s *Session, input string, done func(Reply)) {
	if s.Dynamic && strings.EqualFold(input, constants.DoneKeyword) {
		if len(s.Contents) < 2 {
			count := len(s.Contents)
			m.mu.Unlock()
			done(Reply{Code: ReplyNeedMoreContents, Stage: StageInputContent, ContentCount: count})
			return
		}
		s.Stage = StageInputName
		s.refresh(m.now())
		count := len(s.Contents)
		m.mu.Unlock()
		done(Reply{Code: ReplyPromptName, Stage: StageInputName, ContentCount: count})
		return
	}

	if s.Dynamic && len(s.Contents) >= m.cfg.DynamicMaxContents {
		count := len(s.Contents)
		m.mu.Unlock()
		done(Reply{Code: ReplyContentLimitReached, Stage: StageInputContent, ContentCount: count})
		return
	}

	if utf8.RuneCountInString(input) > m.cfg.MaxContentLength {
		m.mu.Unlock()
		done(Reply{Code: ReplyTooLong, Stage: StageInputContent})
		return
	}
	if m.cfg.ContainsForbiddenWord(input) {
		m.mu.Unlock()
		done(Reply{Code: ReplyForbidden, Stage: StageInputContent})
		return
	}

	s.Contents = append(s.Contents, input)
	s.refresh(m.now())
	count := len(s.Contents)

	if !s.Dynamic {
		s.Stage = StageInputName
		m.mu.Unlock()
		done(Reply{Code: ReplyPromptName, Stage: StageInputName, ContentCount: count})
		return
	}
	m.mu.Unlock()
	done(Reply{Code: ReplyContentAdded, Stage: StageInputContent, ContentCount: count})
}

// handleNameInput runs with m.mu held and releases it before the uniqueness
// check; the stage advance happens in the check's callback.
func (m *Manager) handleNameInput(s *Session, input string, done func(Reply)) {
	if utf8.RuneCountInString(input) > m.cfg.MaxNameLength {
		m.mu.Unlock()
		done(Reply{Code: ReplyNameTooLong, Stage: StageInputName})
		return
	}
	if m.cfg.ContainsForbiddenWord(input) {
		m.mu.Unlock()
		done(Reply{Code: ReplyForbidden, Stage: StageInputName})
		return
	}

	playerID := s.PlayerID
	titleID := s.PlayerName + "_" + input
	dynamic := s.Dynamic
	m.mu.Unlock()

	m.creator.CheckTitleIDExists(playerID, titleID, func(exists bool) {
		if exists {
			done(Reply{Code: ReplyNameDuplicate, Stage: StageInputName})
			return
		}

		m.mu.Lock()
		live, ok := m.sessions[playerID]
		if !ok || live.Stage != StageInputName {
			m.mu.Unlock()
			done(Reply{Code: ReplyNoSession})
			return
		}
		live.Name = input
		live.Stage = StageWaitingConfirm
		live.refresh(m.now())
		m.mu.Unlock()

		money, points := m.creator.CustomPrice(dynamic)
		done(Reply{
			Code:        ReplyAwaitConfirm,
			Stage:       StageWaitingConfirm,
			TitleID:     titleID,
			PriceMoney:  money,
			PricePoints: points,
		})
	})
}

// handleConfirm runs with m.mu held and releases it before done. The session
// is removed before the purchase is committed; commit is terminal.
func (m *Manager) handleConfirm(s *Session, input string, done func(Reply)) {
	if !strings.EqualFold(input, constants.ConfirmKeyword) &&
		!strings.EqualFold(input, "y") &&
		!strings.EqualFold(input, "yes") {
		m.mu.Unlock()
		done(Reply{Code: ReplyInvalidConfirm, Stage: StageWaitingConfirm})
		return
	}

	req := service.CustomTitleRequest{
		PlayerID:   s.PlayerID,
		PlayerName: s.PlayerName,
		Contents:   append([]string(nil), s.Contents...),
		Name:       s.Name,
		Dynamic:    s.Dynamic,
	}
	delete(m.sessions, s.PlayerID)
	m.mu.Unlock()

	m.creator.CreateCustomTitle(req, func(result domain.PurchaseResult) {
		done(Reply{Code: ReplyCommitted, TitleID: req.TitleID(), Result: result})
	})
}
