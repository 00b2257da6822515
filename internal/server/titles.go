package server

import (
	"net/http"

	"title-service/internal/domain"
)

type joinRequest struct {
	Name string `json:"name"`
}

type titleIDRequest struct {
	TitleID string `json:"titleId"`
}

type giveTitleRequest struct {
	TitleID string           `json:"titleId"`
	Data    domain.TitleData `json:"data"`
}

func (s *TitleServer) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req joinRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.roster.Join(id, req.Name)
	s.titles.OnPlayerJoin(id)
	s.brackets.OnPlayerJoin(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (s *TitleServer) handleQuit(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	s.sessions.RemoveSession(id)
	s.rotation.OnPlayerQuit(id)
	s.titles.OnPlayerQuit(id)
	s.brackets.OnPlayerQuit(id)
	s.roster.Leave(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "quit"})
}

// handleNotifications drains and returns the messages queued for the player
// since the last poll, session timeouts included.
func (s *TitleServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	messages := s.roster.DrainNotifications(id)
	if messages == nil {
		messages = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *TitleServer) handlePlayerTitles(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	titles := s.titles.PlayerTitles(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"titles": titles,
		"count":  len(titles),
	})
}

func (s *TitleServer) handleCurrentTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	titleID, ok := s.titles.CurrentTitleID(id)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	data, _ := s.titles.CurrentTitle(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"active":   true,
		"titleId":  titleID,
		"data":     data,
		"rendered": s.rotation.Rendered(id),
	})
}

func (s *TitleServer) handleSetCurrentTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req titleIDRequest
	if err := decodeBody(r, &req); err != nil || req.TitleID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.titles.SetCurrentTitle(id, req.TitleID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "title not owned")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"titleId": req.TitleID})
}

func (s *TitleServer) handleClearCurrentTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.titles.ClearCurrentTitle(id, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": ok})
}

func (s *TitleServer) handlePurchaseTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req titleIDRequest
	if err := decodeBody(r, &req); err != nil || req.TitleID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := await(func(done func(domain.PurchaseResult)) {
		s.titles.PurchasePreset(id, req.TitleID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeResult(w, result)
}

func (s *TitleServer) handleGiveTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req giveTitleRequest
	if err := decodeBody(r, &req); err != nil || req.TitleID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.titles.GiveTitle(id, req.TitleID, req.Data, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "grant failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"titleId": req.TitleID})
}

func (s *TitleServer) handleRemoveTitle(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	titleID := r.PathValue("titleId")

	ok, err := await(func(done func(bool)) {
		s.titles.RemoveTitle(id, titleID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	s.rotation.OnTitleRevoked(id, titleID)
	writeJSON(w, http.StatusOK, map[string]bool{"removed": ok})
}

// writeResult maps a purchase outcome onto an HTTP status while always
// echoing the machine-readable result code.
func writeResult(w http.ResponseWriter, result domain.PurchaseResult) {
	status := http.StatusOK
	switch result {
	case domain.ResultSuccess:
		status = http.StatusOK
	case domain.ResultNotFound:
		status = http.StatusNotFound
	case domain.ResultAlreadyOwned, domain.ResultNameDuplicate:
		status = http.StatusConflict
	case domain.ResultPermissionDenied:
		status = http.StatusForbidden
	case domain.ResultInsufficientFunds:
		status = http.StatusPaymentRequired
	case domain.ResultPaymentUnavailable:
		status = http.StatusServiceUnavailable
	case domain.ResultCustomDisabled:
		status = http.StatusNotImplemented
	case domain.ResultPaymentFailed, domain.ResultDatabaseError:
		status = http.StatusInternalServerError
	default:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{
		"result":  result.String(),
		"success": result.OK(),
	})
}
