package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carenshare/carenshare/internal/model"
)

const requestColumns = `r.id, r.item_id, r.requester_id, r.type, r.description,
	        r.offer_name, r.offer_category, r.shipping_address, r.payment_method,
	        r.amount, r.status, r.rejection_reason, r.created_at,
	        i.name AS item_name, i.kind AS item_kind,
	        ru.first_name || ' ' || ru.last_name AS requester_name, ru.email AS requester_email`

const requestJoins = ` FROM requests r
	 JOIN items i ON i.id = r.item_id
	 JOIN users ru ON ru.id = r.requester_id`

// RequestFilter narrows ListRequests results. Zero values mean "no filter".
type RequestFilter struct {
	Status      string
	ItemID      int64
	RequesterID int64
}

// CreateRequest inserts a new pending request and returns the stored record.
func CreateRequest(ctx context.Context, db *sql.DB, req *model.Request) (*model.Request, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (item_id, requester_id, type, description,
		                       offer_name, offer_category, shipping_address,
		                       payment_method, amount, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		req.ItemID, req.RequesterID, req.Type, req.Description,
		nullable(req.OfferName), nullable(req.OfferCategory),
		nullable(req.ShippingAddress), nullable(req.PaymentMethod), req.Amount,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return GetRequest(ctx, db, id)
}

// GetRequest returns a request by ID, with item and requester details joined in.
func GetRequest(ctx context.Context, db *sql.DB, id int64) (*model.Request, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+requestColumns+requestJoins+` WHERE r.id = ?`, id,
	)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return req, nil
}

// ListRequests returns requests matching the filter, newest first.
func ListRequests(ctx context.Context, db *sql.DB, f RequestFilter) ([]model.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	if f.ItemID > 0 {
		query += ` AND r.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.RequesterID > 0 {
		query += ` AND r.requester_id = ?`
		args = append(args, f.RequesterID)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// HasLiveRequest reports whether the user already has a pending or
// approved request for the item.
func HasLiveRequest(ctx context.Context, db *sql.DB, itemID, userID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests
		 WHERE item_id = ? AND requester_id = ? AND status IN ('pending', 'approved')`,
		itemID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking existing request: %w", err)
	}
	return count > 0, nil
}

// ApproveRequest approves a pending request, claims its item, and
// auto-rejects every other pending request for the same item, all inside
// one transaction so partial application is impossible. The item claim is
// a compare-and-swap on status = 'approved': if a concurrent approval won
// first, zero rows match and the whole transaction aborts with
// model.ErrInvalidState.
//
// Returns the approved request and the auto-rejected siblings (for
// notification fan-out by the caller).
func ApproveRequest(ctx context.Context, db *sql.DB, id int64) (*model.Request, []model.Request, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT item_id, status FROM requests WHERE id = ?`, id,
	).Scan(&itemID, &status)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("request %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading request: %w", err)
	}
	if status != model.StatusPending {
		return nil, nil, fmt.Errorf("%w: request has already been processed", model.ErrInvalidState)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = 'approved', rejection_reason = NULL WHERE id = ?`, id,
	); err != nil {
		return nil, nil, fmt.Errorf("approving request: %w", err)
	}

	var kind string
	err = tx.QueryRowContext(ctx,
		`SELECT kind FROM items WHERE id = ?`, itemID,
	).Scan(&kind)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading item: %w", err)
	}

	claimed := model.StatusClaimed
	if kind == model.KindProduct {
		claimed = model.StatusSold
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'approved'`,
		claimed, itemID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("claiming item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("claiming item: %w", err)
	}
	if rows == 0 {
		return nil, nil, fmt.Errorf("%w: item is no longer available", model.ErrInvalidState)
	}

	// Collect sibling pending requests before rejecting them.
	siblingRows, err := tx.QueryContext(ctx,
		`SELECT id FROM requests WHERE item_id = ? AND status = 'pending' AND id != ?`,
		itemID, id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("listing sibling requests: %w", err)
	}
	var siblingIDs []int64
	for siblingRows.Next() {
		var sid int64
		if err := siblingRows.Scan(&sid); err != nil {
			siblingRows.Close()
			return nil, nil, fmt.Errorf("scanning sibling request: %w", err)
		}
		siblingIDs = append(siblingIDs, sid)
	}
	siblingRows.Close()
	if err := siblingRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("listing sibling requests: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = 'rejected', rejection_reason = ?
		 WHERE item_id = ? AND status = 'pending' AND id != ?`,
		model.ReasonItemClaimed, itemID, id,
	); err != nil {
		return nil, nil, fmt.Errorf("rejecting sibling requests: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing approval: %w", err)
	}

	approved, err := GetRequest(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}

	var siblings []model.Request
	for _, sid := range siblingIDs {
		sibling, err := GetRequest(ctx, db, sid)
		if err != nil {
			return nil, nil, err
		}
		if sibling != nil {
			siblings = append(siblings, *sibling)
		}
	}

	return approved, siblings, nil
}

// RejectRequest marks a pending request rejected with the given reason.
// Returns false when the request was not pending.
func RejectRequest(ctx context.Context, db *sql.DB, id int64, reason string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE requests SET status = 'rejected', rejection_reason = ?
		 WHERE id = ? AND status = 'pending'`,
		reason, id,
	)
	if err != nil {
		return false, fmt.Errorf("rejecting request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rejecting request: %w", err)
	}
	return rows > 0, nil
}

func scanRequest(s scanner) (*model.Request, error) {
	req := &model.Request{}
	var description, offerName, offerCategory sql.NullString
	var shippingAddress, paymentMethod, rejectionReason sql.NullString

	err := s.Scan(&req.ID, &req.ItemID, &req.RequesterID, &req.Type, &description,
		&offerName, &offerCategory, &shippingAddress, &paymentMethod,
		&req.Amount, &req.Status, &rejectionReason, &req.CreatedAt,
		&req.ItemName, &req.ItemKind, &req.RequesterName, &req.RequesterEmail)
	if err != nil {
		return nil, err
	}

	req.Description = description.String
	req.OfferName = offerName.String
	req.OfferCategory = offerCategory.String
	req.ShippingAddress = shippingAddress.String
	req.PaymentMethod = paymentMethod.String
	req.RejectionReason = rejectionReason.String
	return req, nil
}
