package store

import (
	"context"
	"errors"
	"testing"

	"github.com/carenshare/carenshare/internal/db"
	"github.com/carenshare/carenshare/internal/model"
)

func TestCreateRequestJoinsDetails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	requester := testUser(t, database, "req@example.com")
	item := testDonation(t, database, owner.ID, "Coat")

	req, err := CreateRequest(ctx, database, &model.Request{
		ItemID:      item.ID,
		RequesterID: requester.ID,
		Type:        model.RequestClaim,
		Description: "I need this",
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if req.Status != model.StatusPending {
		t.Errorf("expected pending, got %q", req.Status)
	}
	if req.ItemName != "Coat" {
		t.Errorf("expected joined item name, got %q", req.ItemName)
	}
	if req.ItemKind != model.KindDonation {
		t.Errorf("expected joined item kind, got %q", req.ItemKind)
	}
	if req.RequesterEmail != "req@example.com" {
		t.Errorf("expected joined requester email, got %q", req.RequesterEmail)
	}
}

func TestHasLiveRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	requester := testUser(t, database, "req@example.com")
	item := testDonation(t, database, owner.ID, "Coat")

	exists, err := HasLiveRequest(ctx, database, item.ID, requester.ID)
	if err != nil {
		t.Fatalf("HasLiveRequest: %v", err)
	}
	if exists {
		t.Error("expected no live request yet")
	}

	req, err := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: requester.ID, Type: model.RequestClaim,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	exists, _ = HasLiveRequest(ctx, database, item.ID, requester.ID)
	if !exists {
		t.Error("expected live request after create")
	}

	// A rejected request no longer counts as live.
	if _, err := RejectRequest(ctx, database, req.ID, "no"); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	exists, _ = HasLiveRequest(ctx, database, item.ID, requester.ID)
	if exists {
		t.Error("expected no live request after rejection")
	}
}

func TestApproveRequestClaimsItemAndRejectsSiblings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	first := testUser(t, database, "first@example.com")
	second := testUser(t, database, "second@example.com")
	item := testDonation(t, database, owner.ID, "Winter Coat")

	if _, err := ApproveItem(ctx, database, item.ID); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}

	firstReq, err := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: first.ID, Type: model.RequestClaim,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	secondReq, err := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: second.ID, Type: model.RequestClaim,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	approved, siblings, err := ApproveRequest(ctx, database, secondReq.ID)
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	if approved.Status != model.StatusApproved {
		t.Errorf("expected winner approved, got %q", approved.Status)
	}

	claimedItem, _ := GetItem(ctx, database, item.ID)
	if claimedItem.Status != model.StatusClaimed {
		t.Errorf("expected donation claimed, got %q", claimedItem.Status)
	}

	if len(siblings) != 1 || siblings[0].ID != firstReq.ID {
		t.Fatalf("expected one auto-rejected sibling, got %d", len(siblings))
	}
	if siblings[0].Status != model.StatusRejected {
		t.Errorf("expected sibling rejected, got %q", siblings[0].Status)
	}
	if siblings[0].RejectionReason != model.ReasonItemClaimed {
		t.Errorf("expected standard rejection reason, got %q", siblings[0].RejectionReason)
	}
}

func TestApproveRequestMarksProductSold(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	buyer := testUser(t, database, "buyer@example.com")
	item := testProduct(t, database, owner.ID, "Phone", 50)

	if _, err := ApproveItem(ctx, database, item.ID); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	req, err := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: buyer.ID, Type: model.RequestPurchase,
		ShippingAddress: "Main St 1", PaymentMethod: "cash", Amount: 50,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if _, _, err := ApproveRequest(ctx, database, req.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	sold, _ := GetItem(ctx, database, item.ID)
	if sold.Status != model.StatusSold {
		t.Errorf("expected product sold, got %q", sold.Status)
	}
}

func TestApproveRequestRefusesClaimedItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	first := testUser(t, database, "first@example.com")
	second := testUser(t, database, "second@example.com")
	item := testDonation(t, database, owner.ID, "Coat")

	if _, err := ApproveItem(ctx, database, item.ID); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	firstReq, _ := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: first.ID, Type: model.RequestClaim,
	})
	secondReq, _ := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: second.ID, Type: model.RequestClaim,
	})

	if _, _, err := ApproveRequest(ctx, database, firstReq.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	// The second request was auto-rejected; approving it must fail and
	// leave everything untouched.
	_, _, err := ApproveRequest(ctx, database, secondReq.ID)
	if !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}

	still, _ := GetRequest(ctx, database, secondReq.ID)
	if still.Status != model.StatusRejected {
		t.Errorf("expected second request to stay rejected, got %q", still.Status)
	}
}

func TestApproveRequestNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, _, err := ApproveRequest(context.Background(), database, 999)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectRequestOnlyPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	requester := testUser(t, database, "req@example.com")
	item := testDonation(t, database, owner.ID, "Coat")

	if _, err := ApproveItem(ctx, database, item.ID); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	req, _ := CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: requester.ID, Type: model.RequestClaim,
	})

	ok, err := RejectRequest(ctx, database, req.ID, "not suitable")
	if err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if !ok {
		t.Fatal("expected rejection to apply")
	}

	rejected, _ := GetRequest(ctx, database, req.ID)
	if rejected.RejectionReason != "not suitable" {
		t.Errorf("expected reason recorded, got %q", rejected.RejectionReason)
	}

	// Rejecting again is refused.
	ok, err = RejectRequest(ctx, database, req.ID, "again")
	if err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if ok {
		t.Error("expected second rejection to be refused")
	}
}

func TestListRequestsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := testUser(t, database, "owner@example.com")
	first := testUser(t, database, "first@example.com")
	second := testUser(t, database, "second@example.com")
	item := testDonation(t, database, owner.ID, "Coat")

	if _, err := ApproveItem(ctx, database, item.ID); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: first.ID, Type: model.RequestClaim,
	})
	CreateRequest(ctx, database, &model.Request{
		ItemID: item.ID, RequesterID: second.ID, Type: model.RequestClaim,
	})

	all, err := ListRequests(ctx, database, RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 requests, got %d", len(all))
	}

	mine, err := ListRequests(ctx, database, RequestFilter{RequesterID: first.ID})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(mine) != 1 || mine[0].RequesterID != first.ID {
		t.Errorf("expected only first user's request, got %d", len(mine))
	}

	pending, err := ListRequests(ctx, database, RequestFilter{Status: model.StatusPending})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending requests, got %d", len(pending))
	}
}
