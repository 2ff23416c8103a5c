package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/carenshare/carenshare/internal/model"
	"github.com/carenshare/carenshare/internal/store"
	"github.com/carenshare/carenshare/internal/workflow"
)

// AdminHandler serves the moderation endpoints. All routes are mounted
// behind RequireAdmin; handlers still pass the acting user to the
// workflow, which re-checks.
type AdminHandler struct {
	DB       *sql.DB
	Workflow *workflow.Service
}

// ListItems returns listings in any status, filterable by status and kind.
func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(status))
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		Kind:   q.Get("kind"),
		Status: status,
		Sort:   "newest",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ApproveItem approves a pending or rejected listing.
func (h *AdminHandler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Workflow.ApproveItem(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

type rejectItemBody struct {
	Reason     string `json:"reason"`
	AdminNotes string `json:"admin_notes"`
}

// RejectItem rejects a listing with a reason and optional reviewer notes.
func (h *AdminHandler) RejectItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body rejectItemBody
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Workflow.RejectItem(r.Context(), user, id, body.Reason, body.AdminNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListRequests returns requests in any status.
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := store.ListRequests(r.Context(), h.DB, store.RequestFilter{
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// ApproveRequest approves a request, claiming its item and auto-rejecting
// competing pending requests.
func (h *AdminHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Workflow.ApproveRequest(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectRequest rejects a pending request with a reason.
func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var body rejectRequestBody
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Workflow.RejectRequest(r.Context(), user, id, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	stats, err := h.Workflow.Stats(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// ListUsers returns all active accounts.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

type updateRoleBody struct {
	Role string `json:"role"`
}

// UpdateUserRole promotes or demotes an account.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body updateRoleBody
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Role != model.RoleAdmin && body.Role != model.RoleUser {
		jsonError(w, http.StatusBadRequest, "unknown role "+strconv.Quote(body.Role))
		return
	}

	claims := GetClaims(r.Context())
	if claims != nil && claims.UserID == id && body.Role != model.RoleAdmin {
		jsonError(w, http.StatusBadRequest, "cannot demote your own account")
		return
	}

	if err := store.UpdateUserRole(r.Context(), h.DB, id, body.Role); err != nil {
		writeError(w, err)
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// DeleteUser soft-deletes an account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims != nil && claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
