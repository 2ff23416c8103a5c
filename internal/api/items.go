package api

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"

	"github.com/carenshare/carenshare/internal/model"
	"github.com/carenshare/carenshare/internal/store"
	"github.com/carenshare/carenshare/internal/workflow"
)

// maxSubmissionBytes caps a whole listing submission (fields plus images).
const maxSubmissionBytes = 20 << 20

// ItemsHandler serves listing browsing and submission.
type ItemsHandler struct {
	DB       *sql.DB
	Workflow *workflow.Service
}

// Create accepts a multipart listing submission with one or more images.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	draft := workflow.ItemDraft{
		Kind:          r.FormValue("kind"),
		Type:          r.FormValue("type"),
		Name:          r.FormValue("name"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		Condition:     r.FormValue("condition"),
		PickupAddress: r.FormValue("pickup_address"),
	}
	if v := r.FormValue("quantity"); v != "" {
		draft.Quantity, err = strconv.Atoi(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid quantity")
			return
		}
	}
	if v := r.FormValue("price"); v != "" {
		draft.Price, err = strconv.ParseFloat(v, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid price")
			return
		}
	}

	var uploads []workflow.Upload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				jsonError(w, http.StatusBadRequest, "reading uploaded image: "+err.Error())
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				jsonError(w, http.StatusBadRequest, "reading uploaded image: "+err.Error())
				return
			}
			uploads = append(uploads, workflow.Upload{Data: data})
		}
	}

	item, err := h.Workflow.SubmitItem(r.Context(), user, draft, uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// List returns approved listings with optional filters. Status filtering
// beyond approved is an admin concern and lives under /api/admin.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Kind:     q.Get("kind"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Status:   model.StatusApproved,
		Sort:     q.Get("sort"),
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine returns the authenticated user's own listings in every status.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		UserID: user.ID,
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

// Get returns a single listing. Unapproved listings are only visible to
// their owner and admins.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if item.Status == model.StatusPending || item.Status == model.StatusRejected {
		claims := GetClaims(r.Context())
		if claims == nil || (claims.UserID != item.UserID && claims.Role != model.RoleAdmin) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete removes a listing the caller owns (admins may delete any).
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Workflow.DeleteItem(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
