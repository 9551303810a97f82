package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumora-ai/lumora-server/internal/api/respond"
	"github.com/lumora-ai/lumora-server/internal/api/validate"
	"github.com/lumora-ai/lumora-server/internal/model"
	"github.com/lumora-ai/lumora-server/internal/services"
)

type JournalHandler struct {
	svc *services.JournalService
}

func NewJournalHandler(svc *services.JournalService) *JournalHandler {
	return &JournalHandler{svc: svc}
}

// callerID extracts the acting user from the X-User-Id header. Auth
// proper lives in front of this service; the header is the trusted
// identity shim.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-Id")
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", false
	}
	return userID, true
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// CreateEntry POST /api/journal
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Title          string `json:"title"`
		Content        string `json:"content"`
		CreatedForDate string `json:"createdForDate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateEntry(req.Title, req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	forDate, err := validate.Date("createdForDate", req.CreatedForDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	entry := &model.JournalEntry{
		UserID:         userID,
		Title:          req.Title,
		Content:        req.Content,
		CreatedForDate: forDate,
	}
	out, err := h.svc.CreateEntry(r.Context(), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEntries GET /api/journal
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListEntries(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.JournalEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": out, "count": len(out)})
}

// GetEntry GET /api/journal/{entryId}
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GetEntry(r.Context(), userID, mux.Vars(r)["entryId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateEntry PUT /api/journal/{entryId}
func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.UpdateEntry(req.Title, req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.UpdateEntry(r.Context(), userID, mux.Vars(r)["entryId"], req.Title, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEntry DELETE /api/journal/{entryId}
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), userID, mux.Vars(r)["entryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLog POST /api/journal/{entryId}/logs
func (h *JournalHandler) AddLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.LogContent(req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.AddLog(r.Context(), userID, mux.Vars(r)["entryId"], model.JournalLog{Content: req.Content})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateLog PUT /api/journal/{entryId}/logs/{logId}
func (h *JournalHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.LogContent(req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	v := mux.Vars(r)
	out, err := h.svc.UpdateLog(r.Context(), userID, v["entryId"], v["logId"], req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteLog DELETE /api/journal/{entryId}/logs/{logId}
func (h *JournalHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	v := mux.Vars(r)
	out, err := h.svc.DeleteLog(r.Context(), userID, v["entryId"], v["logId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
