package api

import (
	"database/sql"
	"net/http"

	"github.com/carenshare/carenshare/internal/model"
	"github.com/carenshare/carenshare/internal/store"
	"github.com/carenshare/carenshare/internal/workflow"
)

// RequestsHandler serves claim/exchange/purchase requests.
type RequestsHandler struct {
	DB       *sql.DB
	Workflow *workflow.Service
}

type createRequestBody struct {
	ItemID          int64   `json:"item_id"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	OfferName       string  `json:"offer_name"`
	OfferCategory   string  `json:"offer_category"`
	ShippingAddress string  `json:"shipping_address"`
	PaymentMethod   string  `json:"payment_method"`
	Amount          float64 `json:"amount"`
}

// Create submits a new request against an approved listing. The purchase
// amount is taken from the listing price, never from the client.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	var body createRequestBody
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Workflow.CreateRequest(r.Context(), user, workflow.RequestDraft{
		ItemID:          body.ItemID,
		Type:            body.Type,
		Description:     body.Description,
		OfferName:       body.OfferName,
		OfferCategory:   body.OfferCategory,
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, req)
}

// Mine returns the authenticated user's own requests.
func (h *RequestsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	requests, err := store.ListRequests(r.Context(), h.DB, store.RequestFilter{
		RequesterID: user.ID,
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
