package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumora-ai/lumora-server/internal/api/respond"
	"github.com/lumora-ai/lumora-server/internal/api/validate"
	"github.com/lumora-ai/lumora-server/internal/services"
)

type AccountHandler struct {
	svc *services.AccountService
}

func NewAccountHandler(svc *services.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// DeleteUser DELETE /api/users/{userId}
// The path userId must match the caller identity; cross-user deletion is
// rejected before any storage call.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	target := mux.Vars(r)["userId"]
	if err := validate.UserID(target); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if target != userID {
		respond.WriteError(w, http.StatusForbidden, "cannot delete another user's data")
		return
	}
	if err := h.svc.DeleteUserData(r.Context(), target); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
