package model

import "time"

// Request is a user's intent to obtain an item: a plain claim on a
// donation, or an exchange offer / purchase against a product.
type Request struct {
	ID          int64  `json:"id"`
	ItemID      int64  `json:"item_id"`
	RequesterID int64  `json:"requester_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`

	// Exchange offers.
	OfferName     string `json:"offer_name,omitempty"`
	OfferCategory string `json:"offer_category,omitempty"`

	// Purchases. Amount is copied from the product price at creation.
	ShippingAddress string  `json:"shipping_address,omitempty"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Amount          float64 `json:"amount,omitempty"`

	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName       string `json:"item_name,omitempty"`
	ItemKind       string `json:"item_kind,omitempty"`
	RequesterName  string `json:"requester_name,omitempty"`
	RequesterEmail string `json:"requester_email,omitempty"`
}

// Request types.
const (
	RequestClaim    = "claim"
	RequestExchange = "exchange"
	RequestPurchase = "purchase"
)

// ReasonItemClaimed is recorded on sibling requests that are auto-rejected
// when another request for the same item is approved.
const ReasonItemClaimed = "Item has been claimed by another user."

// ValidRequestType reports whether t is a known request type.
func ValidRequestType(t string) bool {
	return t == RequestClaim || t == RequestExchange || t == RequestPurchase
}
