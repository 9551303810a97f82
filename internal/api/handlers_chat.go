package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumora-ai/lumora-server/internal/api/respond"
	"github.com/lumora-ai/lumora-server/internal/api/validate"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/services"
)

type ChatHandler struct {
	svc *services.ChatService
}

func NewChatHandler(svc *services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type turnResponse struct {
	Session *model.ChatSession `json:"session"`
	Answer  string             `json:"answer"`
	Matches interface{}        `json:"matches,omitempty"`
}

// StartSession POST /api/chat/session
func (h *ChatHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string  `json:"message"`
		EntryID *string `json:"entryId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ChatMessage(req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.StartSession(r.Context(), userID, req.Message, req.EntryID)
	if err != nil {
		if errors.Is(err, pipeline.ErrEntryNotFound) {
			respond.WriteNotFound(w, "entry not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, turnResponse{Session: out.Session, Answer: out.Answer, Matches: out.Matches})
}

// ContinueSession POST /api/chat/session/{sessionId}
func (h *ChatHandler) ContinueSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ChatMessage(req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.ContinueSession(r.Context(), userID, mux.Vars(r)["sessionId"], req.Message)
	if err != nil {
		if errors.Is(err, pipeline.ErrEntryNotFound) {
			respond.WriteNotFound(w, "entry not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, turnResponse{Session: out.Session, Answer: out.Answer, Matches: out.Matches})
}

// ListSessions GET /api/chat/sessions
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListSessions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.ChatSession{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"sessions": out, "count": len(out)})
}

// GetSession GET /api/chat/session/{sessionId}
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GetSession(r.Context(), userID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteSession DELETE /api/chat/session/{sessionId}
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(r.Context(), userID, mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
