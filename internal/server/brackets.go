package server

import (
	"net/http"

	"title-service/internal/domain"
)

type bracketIDRequest struct {
	BracketID string `json:"bracketId"`
}

func (s *TitleServer) handleBracketCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"brackets": s.brackets.PresetBrackets(),
		"defaults": s.brackets.DefaultBrackets(),
	})
}

func (s *TitleServer) handlePlayerBrackets(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"brackets": s.brackets.PlayerBrackets(id),
	})
}

func (s *TitleServer) handlePurchaseBracket(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req bracketIDRequest
	if err := decodeBody(r, &req); err != nil || req.BracketID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := await(func(done func(domain.PurchaseResult)) {
		s.brackets.PurchaseBracket(id, req.BracketID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeResult(w, result)
}

func (s *TitleServer) handleGiveBracket(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req bracketIDRequest
	if err := decodeBody(r, &req); err != nil || req.BracketID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.brackets.GiveBracket(id, req.BracketID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "grant failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bracketId": req.BracketID})
}

func (s *TitleServer) handleSelectBracket(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req bracketIDRequest
	if err := decodeBody(r, &req); err != nil || req.BracketID == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.brackets.SelectBracket(id, req.BracketID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "bracket not applied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bracketId": req.BracketID})
}
