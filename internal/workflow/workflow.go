// Package workflow implements the marketplace's moderation lifecycle:
// listing submission and review, claim/exchange/purchase requests, and
// the single-winner approval that claims an item. Every operation takes
// the acting user explicitly; authorization is never read from ambient
// state.
package workflow

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/carenshare/carenshare/internal/blob"
	"github.com/carenshare/carenshare/internal/imaging"
	"github.com/carenshare/carenshare/internal/model"
	"github.com/carenshare/carenshare/internal/notify"
	"github.com/carenshare/carenshare/internal/store"
)

// notifyTimeout bounds a single background notification dispatch.
const notifyTimeout = 10 * time.Second

// Service wires the stores, blob storage, and mail together.
type Service struct {
	db    *sql.DB
	blobs *blob.Store
	mail  *notify.Service
}

// New creates a workflow service. mail may be a disabled notify.Service;
// notifications are always best-effort.
func New(db *sql.DB, blobs *blob.Store, mail *notify.Service) *Service {
	return &Service{db: db, blobs: blobs, mail: mail}
}

// ItemDraft is the user-supplied part of a new listing.
type ItemDraft struct {
	Kind          string
	Type          string
	Name          string
	Description   string
	Category      string
	Condition     string
	Quantity      int
	Price         float64
	PickupAddress string
}

// Upload is one raw image from a submission.
type Upload struct {
	Data []byte
}

// RequestDraft is the user-supplied part of a new request.
type RequestDraft struct {
	ItemID          int64
	Type            string
	Description     string
	OfferName       string
	OfferCategory   string
	ShippingAddress string
	PaymentMethod   string
}

// SubmitItem validates a draft, processes and stores its images, and
// creates the listing in pending status.
func (s *Service) SubmitItem(ctx context.Context, actor *model.User, draft ItemDraft, uploads []Upload) (*model.Item, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", model.ErrValidation)
	}

	collection := blob.CollectionDonations
	if draft.Kind == model.KindProduct {
		collection = blob.CollectionProducts
	}

	var paths []string
	for i, upload := range uploads {
		processed, err := imaging.Process(bytes.NewReader(upload.Data))
		if err != nil {
			s.removeBlobs(paths)
			return nil, fmt.Errorf("%w: image %d: %v", model.ErrValidation, i+1, err)
		}
		path, err := s.blobs.Save(collection, actor.ID, ".jpg", processed.Data)
		if err != nil {
			s.removeBlobs(paths)
			return nil, fmt.Errorf("storing image: %w", err)
		}
		paths = append(paths, path)
	}

	item := &model.Item{
		Kind:          draft.Kind,
		Type:          draft.Type,
		Name:          draft.Name,
		Description:   draft.Description,
		Category:      draft.Category,
		Condition:     draft.Condition,
		Quantity:      draft.Quantity,
		Price:         draft.Price,
		PickupAddress: draft.PickupAddress,
		ImagePaths:    paths,
		MainImage:     paths[0],
		UserID:        actor.ID,
	}

	created, err := store.CreateItem(ctx, s.db, item)
	if err != nil {
		s.removeBlobs(paths)
		return nil, err
	}

	if created.Kind == model.KindProduct {
		s.dispatch("submission received", func(ctx context.Context) error {
			return s.mail.SubmissionReceived(ctx, created)
		})
	}

	return created, nil
}

// ApproveItem moves an item to approved. Re-approving an approved item is
// a no-op success, and a rejected item may be approved on appeal; items
// already claimed or sold cannot change.
func (s *Service) ApproveItem(ctx context.Context, actor *model.User, itemID int64) (*model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if item.Terminal() {
		return nil, fmt.Errorf("%w: item has already been %s", model.ErrInvalidState, item.Status)
	}

	ok, err := store.ApproveItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item is no longer reviewable", model.ErrInvalidState)
	}

	approved, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	s.dispatch("item approved", func(ctx context.Context) error {
		return s.mail.ItemApproved(ctx, approved)
	})

	return approved, nil
}

// RejectItem moves an item to rejected with a mandatory reason and
// optional reviewer notes.
func (s *Service) RejectItem(ctx context.Context, actor *model.User, itemID int64, reason, adminNotes string) (*model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", model.ErrValidation)
	}

	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if item.Terminal() {
		return nil, fmt.Errorf("%w: item has already been %s", model.ErrInvalidState, item.Status)
	}

	ok, err := store.RejectItem(ctx, s.db, itemID, reason, adminNotes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item is no longer reviewable", model.ErrInvalidState)
	}

	rejected, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	s.dispatch("item rejected", func(ctx context.Context) error {
		return s.mail.ItemRejected(ctx, rejected)
	})

	return rejected, nil
}

// CreateRequest submits a claim, exchange, or purchase request against an
// approved item. Owners cannot request their own items, and a user may
// hold at most one live request per item.
func (s *Service) CreateRequest(ctx context.Context, actor *model.User, draft RequestDraft) (*model.Request, error) {
	if !model.ValidRequestType(draft.Type) {
		return nil, fmt.Errorf("%w: unknown request type %q", model.ErrValidation, draft.Type)
	}

	item, err := store.GetItem(ctx, s.db, draft.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", draft.ItemID, model.ErrNotFound)
	}
	// Ownership is checked before status: requesting your own item is
	// forbidden no matter what state it is in.
	if item.UserID == actor.ID {
		return nil, fmt.Errorf("%w: cannot request your own item", model.ErrForbidden)
	}
	if item.Status != model.StatusApproved {
		return nil, fmt.Errorf("%w: item is not available for request", model.ErrInvalidState)
	}

	if err := validateRequestType(draft, item); err != nil {
		return nil, err
	}

	exists, err := store.HasLiveRequest(ctx, s.db, item.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you already have an active request for this item", model.ErrValidation)
	}

	req := &model.Request{
		ItemID:          item.ID,
		RequesterID:     actor.ID,
		Type:            draft.Type,
		Description:     draft.Description,
		OfferName:       draft.OfferName,
		OfferCategory:   draft.OfferCategory,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
	}
	if draft.Type == model.RequestPurchase {
		req.Amount = item.Price
	}

	created, err := store.CreateRequest(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	s.dispatch("request received", func(ctx context.Context) error {
		return s.mail.RequestReceived(ctx, created, item)
	})

	return created, nil
}

// ApproveRequest approves a pending request: the item becomes claimed (or
// sold, for products) and every other pending request for it is rejected
// with the standard reason, atomically. Notifications then fan out to the
// winner, the owner, and each auto-rejected requester.
func (s *Service) ApproveRequest(ctx context.Context, actor *model.User, requestID int64) (*model.Request, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	approved, siblings, err := store.ApproveRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, s.db, approved.ItemID)
	if err != nil {
		return nil, err
	}

	s.dispatch("request approved", func(ctx context.Context) error {
		return s.mail.RequestApproved(ctx, approved, item)
	})
	for _, sibling := range siblings {
		sibling := sibling
		s.dispatch("request auto-rejected", func(ctx context.Context) error {
			return s.mail.RequestRejected(ctx, &sibling)
		})
	}

	return approved, nil
}

// RejectRequest rejects a pending request with a mandatory reason.
func (s *Service) RejectRequest(ctx context.Context, actor *model.User, requestID int64, reason string) (*model.Request, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", model.ErrValidation)
	}

	req, err := store.GetRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, model.ErrNotFound)
	}
	if req.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: request has already been processed", model.ErrInvalidState)
	}

	ok, err := store.RejectRequest(ctx, s.db, requestID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: request has already been processed", model.ErrInvalidState)
	}

	rejected, err := store.GetRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}

	s.dispatch("request rejected", func(ctx context.Context) error {
		return s.mail.RequestRejected(ctx, rejected)
	})

	return rejected, nil
}

// DeleteItem removes a listing. Only the owner or an admin may delete;
// requests against it are cascade-deleted and its images are removed
// best-effort.
func (s *Service) DeleteItem(ctx context.Context, actor *model.User, itemID int64) error {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if item.UserID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin may delete a listing", model.ErrForbidden)
	}

	if err := store.DeleteItem(ctx, s.db, itemID); err != nil {
		return err
	}

	s.removeBlobs(item.ImagePaths)
	return nil
}

// Stats returns the admin dashboard counters.
func (s *Service) Stats(ctx context.Context, actor *model.User) (*model.Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.GetStats(ctx, s.db)
}

func validateDraft(draft ItemDraft) error {
	if !model.ValidKind(draft.Kind) {
		return fmt.Errorf("%w: unknown item kind %q", model.ErrValidation, draft.Kind)
	}
	if draft.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if draft.Condition == "" {
		return fmt.Errorf("%w: condition is required", model.ErrValidation)
	}

	switch draft.Kind {
	case model.KindDonation:
		if draft.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", model.ErrValidation)
		}
		if draft.PickupAddress == "" {
			return fmt.Errorf("%w: pickup address is required", model.ErrValidation)
		}
	case model.KindProduct:
		if draft.Price <= 0 {
			return fmt.Errorf("%w: price must be greater than zero", model.ErrValidation)
		}
		if draft.Category == "" {
			return fmt.Errorf("%w: category is required", model.ErrValidation)
		}
	}
	return nil
}

func validateRequestType(draft RequestDraft, item *model.Item) error {
	switch draft.Type {
	case model.RequestClaim:
		if item.Kind != model.KindDonation {
			return fmt.Errorf("%w: claims apply to donations only", model.ErrValidation)
		}
	case model.RequestExchange:
		if item.Kind != model.KindProduct {
			return fmt.Errorf("%w: exchange offers apply to products only", model.ErrValidation)
		}
		if draft.OfferName == "" {
			return fmt.Errorf("%w: offered item name is required", model.ErrValidation)
		}
	case model.RequestPurchase:
		if item.Kind != model.KindProduct {
			return fmt.Errorf("%w: purchases apply to products only", model.ErrValidation)
		}
		if draft.ShippingAddress == "" {
			return fmt.Errorf("%w: shipping address is required", model.ErrValidation)
		}
		if draft.PaymentMethod == "" {
			return fmt.Errorf("%w: payment method is required", model.ErrValidation)
		}
	}
	return nil
}

func requireAdmin(actor *model.User) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin access required", model.ErrForbidden)
	}
	return nil
}

// dispatch runs a notification in the background. The state change has
// already committed; a failed send is logged and never unwound.
func (s *Service) dispatch(event string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			slog.Warn("notification failed", "event", event, "error", err)
		}
	}()
}

func (s *Service) removeBlobs(paths []string) {
	for _, path := range paths {
		if err := s.blobs.Remove(path); err != nil {
			slog.Warn("removing blob", "path", path, "error", err)
		}
	}
}
