package services

import (
	"context"
	"testing"

	"agentgift-service/apperrors"
	"agentgift-service/models"
)

func TestNominationReview(t *testing.T) {
	store := newFakeStore()
	svc := NewNominationService(store)
	ctx := context.Background()
	nominator := "11111111-2222-4333-8444-555555555555"
	nominee := "66666666-7777-4888-9999-000000000000"

	if _, err := svc.Nominate(ctx, nominee, NominationInput{NomineeUserID: nominee, Reason: "me"}); apperrors.Code(err) != apperrors.ErrCodeValidation {
		t.Errorf("self nomination err = %v", err)
	}
	if _, err := svc.Nominate(ctx, nominator, NominationInput{NomineeUserID: nominee, Reason: "<p></p>"}); apperrors.Code(err) != apperrors.ErrCodeValidation {
		t.Errorf("blank reason err = %v", err)
	}

	n, err := svc.Nominate(ctx, nominator, NominationInput{NomineeUserID: nominee, Reason: "Lost their job this month"})
	if err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if n.Status != models.NominationPending {
		t.Errorf("Status = %q", n.Status)
	}

	rejected, err := svc.Reject(ctx, n.ID, "admin-1")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != models.NominationRejected || rejected.ReviewedBy == nil || *rejected.ReviewedBy != "admin-1" {
		t.Errorf("rejected = %+v", rejected)
	}

	if _, err := svc.Approve(ctx, n.ID, "admin-2"); apperrors.Code(err) != apperrors.ErrCodeConflict {
		t.Errorf("approve after reject err = %v, want CONFLICT", err)
	}
	if _, err := svc.Approve(ctx, "not-an-id", "admin-2"); apperrors.Code(err) != apperrors.ErrCodeValidation {
		t.Errorf("bad id err = %v", err)
	}
	if _, err := svc.Approve(ctx, nominator, "admin-2"); apperrors.Code(err) != apperrors.ErrCodeNotFound {
		t.Errorf("unknown id err = %v", err)
	}

	list, err := svc.List(ctx, "rejected", 10)
	if err != nil || len(list) != 1 {
		t.Errorf("List(rejected) = %v, %v", list, err)
	}
	if _, err := svc.List(ctx, "archived", 10); apperrors.Code(err) != apperrors.ErrCodeValidation {
		t.Errorf("bad status err = %v", err)
	}
}

func TestRevealIsSingleShot(t *testing.T) {
	store := newFakeStore()
	svc := NewGiftService(store, store)
	ctx := context.Background()

	rs, err := svc.CreateRevealSession(ctx, "u1", RevealInput{GiftID: "gift42", RecipientID: "rcpt7"})
	if err != nil {
		t.Fatalf("CreateRevealSession() error = %v", err)
	}
	if rs.SessionKey != "gift42-rcpt7" {
		t.Errorf("SessionKey = %q", rs.SessionKey)
	}
	if _, err := svc.CreateRevealSession(ctx, "u1", RevealInput{GiftID: "gift42", RecipientID: "rcpt7"}); apperrors.Code(err) != apperrors.ErrCodeAlreadyExists {
		t.Errorf("duplicate session err = %v", err)
	}

	revealed, err := svc.Reveal(ctx, rs.SessionKey)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if revealed.RevealedAt == nil {
		t.Error("RevealedAt not set")
	}
	if _, err := svc.Reveal(ctx, rs.SessionKey); apperrors.Code(err) != apperrors.ErrCodeConflict {
		t.Errorf("second reveal err = %v, want CONFLICT", err)
	}
	if _, err := svc.Reveal(ctx, "nope-nope"); apperrors.Code(err) != apperrors.ErrCodeNotFound {
		t.Errorf("unknown key err = %v", err)
	}
}

func TestFollowThroughUsesTier(t *testing.T) {
	store := newFakeStore()
	pro := store.addUser(models.UserProfile{Tier: models.TierPro})
	svc := NewGiftService(store, store)

	free, err := svc.FollowThrough(context.Background(), "", FollowThroughInput{GiftType: "digital"})
	if err != nil {
		t.Fatal(err)
	}
	full, err := svc.FollowThrough(context.Background(), pro.ID, FollowThroughInput{GiftType: "digital"})
	if err != nil {
		t.Fatal(err)
	}
	if len(full) <= len(free) {
		t.Errorf("pro steps = %d, free steps = %d", len(full), len(free))
	}

	malformed, err := svc.FollowThrough(context.Background(), "not-a-uuid", FollowThroughInput{GiftType: "digital"})
	if err != nil {
		t.Fatalf("malformed user id: %v", err)
	}
	if len(malformed) != len(free) {
		t.Errorf("malformed id steps = %d, want free tier %d", len(malformed), len(free))
	}
}
