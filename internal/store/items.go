package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/carenshare/carenshare/internal/model"
)

const itemColumns = `i.id, i.kind, i.type, i.name, i.description, i.category, i.condition,
	        i.quantity, i.price, i.pickup_address, i.image_paths, i.main_image,
	        i.status, i.rejection_reason, i.admin_notes, i.user_id,
	        i.created_at, i.updated_at, i.approved_at, i.rejected_at,
	        u.first_name || ' ' || u.last_name AS owner_name, u.email AS owner_email`

// ItemFilter narrows ListItems results. Zero values mean "no filter".
type ItemFilter struct {
	Kind     string
	Type     string
	Category string
	Status   string
	UserID   int64
	Sort     string
}

// sortClauses whitelists the recognized listing sort keys. Unrecognized
// keys leave the result unsorted (pass-through, not an error).
var sortClauses = map[string]string{
	"newest":     "i.created_at DESC",
	"oldest":     "i.created_at ASC",
	"price_low":  "i.price ASC",
	"price_high": "i.price DESC",
	"name_asc":   "i.name COLLATE NOCASE ASC",
	"name_desc":  "i.name COLLATE NOCASE DESC",
}

// CreateItem inserts a new item and returns the stored record.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	paths, err := json.Marshal(item.ImagePaths)
	if err != nil {
		return nil, fmt.Errorf("encoding image paths: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (kind, type, name, description, category, condition,
		                    quantity, price, pickup_address, image_paths, main_image,
		                    status, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.Type, item.Name, item.Description, item.Category, item.Condition,
		item.Quantity, item.Price, item.PickupAddress, string(paths), item.MainImage,
		model.StatusPending, item.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, with the owner's name and email joined in.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN users u ON u.id = i.user_id
		 WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i
	          JOIN users u ON u.id = i.user_id
	          WHERE 1=1`
	var args []any

	if f.Kind != "" {
		query += ` AND i.kind = ?`
		args = append(args, f.Kind)
	}
	if f.Type != "" {
		query += ` AND i.type = ? COLLATE NOCASE`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND i.category = ? COLLATE NOCASE`
		args = append(args, f.Category)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.UserID > 0 {
		query += ` AND i.user_id = ?`
		args = append(args, f.UserID)
	}
	if clause, ok := sortClauses[f.Sort]; ok {
		query += ` ORDER BY ` + clause
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ApproveItem marks an item approved, clearing any earlier rejection.
// Returns false when the item is missing or already claimed/sold, which
// are states approval must not overwrite.
func ApproveItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items
		 SET status = 'approved', rejection_reason = NULL, rejected_at = NULL,
		     approved_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN ('pending', 'approved', 'rejected')`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("approving item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("approving item: %w", err)
	}
	return rows > 0, nil
}

// RejectItem marks an item rejected with the given reason. Returns false
// when the item is missing or already claimed/sold.
func RejectItem(ctx context.Context, db *sql.DB, id int64, reason, adminNotes string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items
		 SET status = 'rejected', rejection_reason = ?, admin_notes = ?,
		     rejected_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN ('pending', 'approved', 'rejected')`,
		reason, nullable(adminNotes), id,
	)
	if err != nil {
		return false, fmt.Errorf("rejecting item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rejecting item: %w", err)
	}
	return rows > 0, nil
}

// DeleteItem removes an item. Its requests are cascade-deleted by the
// foreign key.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var description, category, pickupAddress, mainImage sql.NullString
	var rejectionReason, adminNotes sql.NullString
	var imagePaths string

	err := s.Scan(&item.ID, &item.Kind, &item.Type, &item.Name, &description, &category,
		&item.Condition, &item.Quantity, &item.Price, &pickupAddress, &imagePaths,
		&mainImage, &item.Status, &rejectionReason, &adminNotes, &item.UserID,
		&item.CreatedAt, &item.UpdatedAt, &item.ApprovedAt, &item.RejectedAt,
		&item.OwnerName, &item.OwnerEmail)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Category = category.String
	item.PickupAddress = pickupAddress.String
	item.MainImage = mainImage.String
	item.RejectionReason = rejectionReason.String
	item.AdminReviewNotes = adminNotes.String

	if err := json.Unmarshal([]byte(imagePaths), &item.ImagePaths); err != nil {
		item.ImagePaths = nil
	}
	return item, nil
}

// nullable converts an empty string to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
