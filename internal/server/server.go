package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"title-service/internal/constants"
	"title-service/internal/presence"
	"title-service/internal/rotation"
	"title-service/internal/service"
	"title-service/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errTimeout = errors.New("write queue did not answer in time")

// TitleServer exposes the title system over JSON HTTP. The game-facing
// endpoints mirror what an in-process plugin would call; the /admin
// endpoints manage the preset catalog.
type TitleServer struct {
	titles   *service.TitleService
	brackets *service.BracketService
	presets  *service.PresetService
	sessions *session.Manager
	rotation *rotation.Manager
	roster   *presence.Roster
	logger   zerolog.Logger
}

func NewTitleServer(
	titles *service.TitleService,
	brackets *service.BracketService,
	presets *service.PresetService,
	sessions *session.Manager,
	rot *rotation.Manager,
	roster *presence.Roster,
	logger zerolog.Logger,
) *TitleServer {
	return &TitleServer{
		titles:   titles,
		brackets: brackets,
		presets:  presets,
		sessions: sessions,
		rotation: rot,
		roster:   roster,
		logger:   logger,
	}
}

func (s *TitleServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /players/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /players/{id}/quit", s.handleQuit)
	mux.HandleFunc("GET /players/{id}/notifications", s.handleNotifications)

	mux.HandleFunc("GET /players/{id}/titles", s.handlePlayerTitles)
	mux.HandleFunc("GET /players/{id}/titles/current", s.handleCurrentTitle)
	mux.HandleFunc("PUT /players/{id}/titles/current", s.handleSetCurrentTitle)
	mux.HandleFunc("DELETE /players/{id}/titles/current", s.handleClearCurrentTitle)
	mux.HandleFunc("POST /players/{id}/titles/purchase", s.handlePurchaseTitle)
	mux.HandleFunc("POST /players/{id}/titles/give", s.handleGiveTitle)
	mux.HandleFunc("DELETE /players/{id}/titles/{titleId}", s.handleRemoveTitle)

	mux.HandleFunc("POST /players/{id}/session", s.handleStartSession)
	mux.HandleFunc("GET /players/{id}/session", s.handleSessionState)
	mux.HandleFunc("POST /players/{id}/session/input", s.handleSessionInput)

	mux.HandleFunc("GET /brackets", s.handleBracketCatalog)
	mux.HandleFunc("GET /players/{id}/brackets", s.handlePlayerBrackets)
	mux.HandleFunc("POST /players/{id}/brackets/purchase", s.handlePurchaseBracket)
	mux.HandleFunc("POST /players/{id}/brackets/give", s.handleGiveBracket)
	mux.HandleFunc("PUT /players/{id}/brackets/current", s.handleSelectBracket)

	mux.HandleFunc("GET /presets", s.handlePresets)
	mux.HandleFunc("PUT /admin/presets/{titleId}", s.handleSavePreset)
	mux.HandleFunc("DELETE /admin/presets/{titleId}", s.handleDeletePreset)
	mux.HandleFunc("POST /admin/presets/{titleId}/disable", s.handleDisablePreset)
}

func (s *TitleServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// await bridges the callback-style service layer to a request/response
// handler. The callback fires from a queue worker; the bound wait keeps a
// stalled queue from pinning request goroutines forever.
func await[T any](call func(done func(T))) (T, error) {
	ch := make(chan T, 1)
	call(func(v T) { ch <- v })
	select {
	case v := <-ch:
		return v, nil
	case <-time.After(constants.RequestTimeout):
		var zero T
		return zero, errTimeout
	}
}

func playerID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
