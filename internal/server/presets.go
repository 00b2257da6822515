package server

import (
	"net/http"

	"title-service/internal/domain"
)

func (s *TitleServer) handlePresets(w http.ResponseWriter, _ *http.Request) {
	presets := s.presets.Presets()
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": presets,
		"count":   len(presets),
	})
}

func (s *TitleServer) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	titleID := r.PathValue("titleId")
	var data domain.TitleData
	if err := decodeBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(data.Contents) == 0 {
		writeError(w, http.StatusBadRequest, "preset needs at least one content")
		return
	}

	ok, err := await(func(done func(bool)) {
		s.presets.Save(titleID, data, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"titleId": titleID})
}

func (s *TitleServer) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	titleID := r.PathValue("titleId")

	ok, err := await(func(done func(bool)) {
		s.presets.Delete(titleID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": ok})
}

func (s *TitleServer) handleDisablePreset(w http.ResponseWriter, r *http.Request) {
	titleID := r.PathValue("titleId")

	ok, err := await(func(done func(bool)) {
		s.presets.Disable(titleID, done)
	})
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"disabled": ok})
}
