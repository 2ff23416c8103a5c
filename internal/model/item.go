package model

import "time"

// Item is a moderated listing: either a donated good offered for free or a
// marketplace product with a price. The kind discriminator replaces what
// used to be separate per-category tables.
type Item struct {
	ID               int64    `json:"id"`
	Kind             string   `json:"kind"`
	Type             string   `json:"type"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category,omitempty"`
	Condition        string   `json:"condition"`
	Quantity         int      `json:"quantity,omitempty"`
	Price            float64  `json:"price,omitempty"`
	PickupAddress    string   `json:"pickup_address,omitempty"`
	ImagePaths       []string `json:"image_paths"`
	MainImage        string   `json:"main_image,omitempty"`
	Status           string   `json:"status"`
	RejectionReason  string   `json:"rejection_reason,omitempty"`
	AdminReviewNotes string   `json:"admin_review_notes,omitempty"`
	UserID           int64    `json:"user_id"`

	// Joined fields (not always populated).
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
}

// Item kinds.
const (
	KindDonation = "donation"
	KindProduct  = "product"
)

// Item statuses. Donations end in claimed, products in sold.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusClaimed  = "claimed"
	StatusSold     = "sold"
)

// ClaimedStatus returns the terminal status an item takes when a request
// against it wins.
func (i *Item) ClaimedStatus() string {
	if i.Kind == KindProduct {
		return StatusSold
	}
	return StatusClaimed
}

// Terminal reports whether the item can no longer change status.
func (i *Item) Terminal() bool {
	return i.Status == StatusClaimed || i.Status == StatusSold
}

// ValidKind reports whether kind is a known item kind.
func ValidKind(kind string) bool {
	return kind == KindDonation || kind == KindProduct
}

// ValidItemStatus reports whether status is a known item status.
func ValidItemStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusClaimed, StatusSold:
		return true
	}
	return false
}
