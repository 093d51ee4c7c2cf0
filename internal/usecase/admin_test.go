package usecase

import (
	"context"
	"errors"
	"testing"

	"lawrag/internal/domain"
)

func TestAdminDeleteRequiresConfirmation(t *testing.T) {
	s := newTestStore(t)
	admin := NewAdmin(s)
	ctx := context.Background()

	if err := admin.Delete(ctx, "laws", false); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("unconfirmed delete must refuse, got %v", err)
	}
	// The collection is untouched.
	if _, err := admin.Info(ctx, "laws"); err != nil {
		t.Fatalf("collection should survive a refused delete: %v", err)
	}

	if err := admin.Delete(ctx, "laws", true); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Info(ctx, "laws"); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound after delete, got %v", err)
	}
}

func TestAdminForceCreateRequiresConfirmation(t *testing.T) {
	s := newTestStore(t)
	admin := NewAdmin(s)
	ctx := context.Background()

	err := admin.Create(ctx, "laws", testDim, domain.DistanceCosine, true, false)
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("force recreate without confirm must refuse, got %v", err)
	}

	// Non-destructive create needs no confirmation.
	if err := admin.Create(ctx, "other", testDim, domain.DistanceCosine, false, false); err != nil {
		t.Fatal(err)
	}

	if err := admin.Create(ctx, "laws", testDim, domain.DistanceCosine, true, true); err != nil {
		t.Fatal(err)
	}
}

func TestAdminPointDeletionGated(t *testing.T) {
	s := newTestStore(t)
	ing := newTestIngestor(t, s, IDRandom)
	if _, err := ing.IngestText(context.Background(), "provision", "law.txt", map[string]any{"category": "civil"}); err != nil {
		t.Fatal(err)
	}

	admin := NewAdmin(s)
	ctx := context.Background()

	points, _, err := admin.Scroll(ctx, "laws", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}

	err = admin.DeletePoints(ctx, "laws", []string{points[0].ID}, false)
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("unconfirmed point delete must refuse, got %v", err)
	}
	err = admin.DeleteByFilter(ctx, "laws", domain.Filter{"category": "civil"}, false)
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("unconfirmed filter delete must refuse, got %v", err)
	}
	info, _ := admin.Info(ctx, "laws")
	if info.Count != 1 {
		t.Fatalf("refused deletes must not touch points, count=%d", info.Count)
	}

	if err := admin.DeleteByFilter(ctx, "laws", domain.Filter{"category": "civil"}, true); err != nil {
		t.Fatal(err)
	}
	info, _ = admin.Info(ctx, "laws")
	if info.Count != 0 {
		t.Errorf("confirmed filter delete should remove the point, count=%d", info.Count)
	}
}
