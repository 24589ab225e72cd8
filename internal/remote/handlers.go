package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/voice"
	"github.com/go-chi/chi/v5"
)

// statusResponse is the JSON form of a tts.Snapshot.
type statusResponse struct {
	DocumentID string    `json:"document_id,omitempty"`
	Page       int       `json:"page"`
	PageCount  int       `json:"page_count"`
	State      string    `json:"state"`
	Chunk      int       `json:"chunk"`
	ChunkCount int       `json:"chunk_count"`
	ChunkText  string    `json:"chunk_text,omitempty"`
	Voice      string    `json:"voice,omitempty"`
	Rate       float64   `json:"rate"`
	Pitch      float64   `json:"pitch"`
	Volume     float64   `json:"volume"`
	Muted      bool      `json:"muted"`
	Reading    bool      `json:"reading"`
	Available  bool      `json:"available"`
	Status     string    `json:"status"`
	StatusKind string    `json:"status_kind"`
	Detail     string    `json:"detail,omitempty"`
	Updated    time.Time `json:"updated"`
}

func fromSnapshot(s tts.Snapshot) statusResponse {
	return statusResponse{
		DocumentID: s.DocumentID,
		Page:       s.Page,
		PageCount:  s.PageCount,
		State:      s.State.String(),
		Chunk:      s.Chunk,
		ChunkCount: s.ChunkCount,
		ChunkText:  s.ChunkText,
		Voice:      s.Voice,
		Rate:       s.Rate,
		Pitch:      s.Pitch,
		Volume:     s.Volume,
		Muted:      s.Muted,
		Reading:    s.Reading,
		Available:  s.Available,
		Status:     s.Status.Message,
		StatusKind: s.Status.Kind.String(),
		Detail:     s.Status.Detail,
		Updated:    s.Updated,
	}
}

type voiceResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Lang   string `json:"lang,omitempty"`
	Gender string `json:"gender,omitempty"`
}

func fromVoices(voices []voice.Voice) []voiceResponse {
	out := make([]voiceResponse, len(voices))
	for i, v := range voices {
		out[i] = voiceResponse{ID: v.ID, Name: v.Name, Lang: v.Lang, Gender: v.Gender}
	}
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fromSnapshot(s.ctrl.Snapshot()))
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":  fromVoices(s.ctrl.Voices()),
		"current": s.ctrl.Snapshot().Voice,
	})
}

func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	doc := s.document()
	if doc == nil {
		jsonError(w, tts.ErrNoDocument.Error(), http.StatusConflict)
		return
	}

	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "page must be a number", http.StatusBadRequest)
		return
	}
	if page < 1 || page > doc.PageCount() {
		jsonError(w, "page out of range", http.StatusNotFound)
		return
	}

	text, err := s.texts.PageText(r.Context(), doc, page)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":  page,
		"empty": text == "",
		"text":  text,
	})
}

// control adapts a controller method without arguments to a handler that
// answers with the resulting status.
func (s *Server) control(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, fn())
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if hard, _ := strconv.ParseBool(r.URL.Query().Get("hard")); hard {
		s.respond(w, s.ctrl.StopHard())
		return
	}
	s.respond(w, s.ctrl.Stop())
}

func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "page must be a number", http.StatusBadRequest)
		return
	}
	autoplay, _ := strconv.ParseBool(r.URL.Query().Get("autoplay"))
	s.respond(w, s.ctrl.GoToPage(page, autoplay))
}

type voiceRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		jsonError(w, "body must be {\"name\": \"voice name\"}", http.StatusBadRequest)
		return
	}
	s.respond(w, s.ctrl.SetVoice(req.Name))
}

type numberRequest struct {
	Value *float64 `json:"value"`
}

func (s *Server) handleNumber(set func(float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req numberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
			jsonError(w, "body must be {\"value\": number}", http.StatusBadRequest)
			return
		}
		s.respond(w, set(*req.Value))
	}
}

type muteRequest struct {
	Muted *bool `json:"muted"`
}

// handleMute sets the mute flag, or toggles it when the body is empty.
func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	var req muteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "body must be {\"muted\": bool}", http.StatusBadRequest)
			return
		}
	}
	if req.Muted == nil {
		s.respond(w, s.ctrl.ToggleMute())
		return
	}
	s.respond(w, s.ctrl.SetMuted(*req.Muted))
}

func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, fromSnapshot(s.ctrl.Snapshot()))
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tts.ErrVoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, tts.ErrNoDocument), errors.Is(err, tts.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, tts.ErrSynthesisUnavailable), errors.Is(err, tts.ErrControllerClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, tts.ErrInvalidConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
