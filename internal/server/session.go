package server

import (
	"net/http"

	"title-service/internal/session"
)

type sessionInputRequest struct {
	Input string `json:"input"`
}

func (s *TitleServer) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	name, ok := s.roster.Name(id)
	if !ok {
		writeError(w, http.StatusConflict, "player is not online")
		return
	}
	if s.sessions.HasSession(id) {
		writeError(w, http.StatusConflict, "session already in progress")
		return
	}

	snap := s.sessions.StartSession(id, name)
	writeJSON(w, http.StatusCreated, sessionView(snap, s.sessions.RemainingSeconds(id)))
}

func (s *TitleServer) handleSessionState(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	snap, ok := s.sessions.Session(id)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, sessionView(snap, s.sessions.RemainingSeconds(id)))
}

func (s *TitleServer) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req sessionInputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	reply, err := await(func(done func(session.Reply)) {
		s.sessions.HandleInput(id, req.Input, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	body := map[string]any{
		"code":  replyCode(reply.Code),
		"stage": reply.Stage.String(),
	}
	if reply.ContentCount > 0 {
		body["contentCount"] = reply.ContentCount
	}
	if reply.TitleID != "" {
		body["titleId"] = reply.TitleID
	}
	if reply.PriceMoney > 0 || reply.PricePoints > 0 {
		body["priceMoney"] = reply.PriceMoney
		body["pricePoints"] = reply.PricePoints
	}
	if reply.Code == session.ReplyCommitted {
		body["result"] = reply.Result.String()
		body["success"] = reply.Result.OK()
	}
	writeJSON(w, http.StatusOK, body)
}

func sessionView(snap session.Session, remaining int) map[string]any {
	return map[string]any{
		"active":           true,
		"stage":            snap.Stage.String(),
		"dynamic":          snap.Dynamic,
		"contents":         snap.Contents,
		"name":             snap.Name,
		"remainingSeconds": remaining,
	}
}

func replyCode(code session.ReplyCode) string {
	switch code {
	case session.ReplyNoSession:
		return "no_session"
	case session.ReplyCancelled:
		return "cancelled"
	case session.ReplyInvalidChoice:
		return "invalid_choice"
	case session.ReplyPromptContent:
		return "prompt_content"
	case session.ReplyContentAdded:
		return "content_added"
	case session.ReplyNeedMoreContents:
		return "need_more_contents"
	case session.ReplyContentLimitReached:
		return "content_limit_reached"
	case session.ReplyTooLong:
		return "content_too_long"
	case session.ReplyForbidden:
		return "forbidden_word"
	case session.ReplyPromptName:
		return "prompt_name"
	case session.ReplyNameTooLong:
		return "name_too_long"
	case session.ReplyNameDuplicate:
		return "name_duplicate"
	case session.ReplyAwaitConfirm:
		return "await_confirm"
	case session.ReplyInvalidConfirm:
		return "invalid_confirm"
	case session.ReplyCommitted:
		return "committed"
	}
	return "unknown"
}
