package device

import (
	"context"
	"testing"

	"github.com/airsight/airsight/internal/apperr"
)

func TestRegister(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	created, err := svc.Register(context.Background(), "airsight", RegisterRequest{
		Name:    "aq_g5_01",
		SiteID:  "site-1",
		Network: "airsight",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an id to be minted")
	}
	if created.Status != StatusNotDeployed {
		t.Errorf("status = %q, want default %q", created.Status, StatusNotDeployed)
	}
}

func TestRegister_RequiresName(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	_, err := svc.Register(context.Background(), "airsight", RegisterRequest{})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, err := svc.Register(context.Background(), "airsight", RegisterRequest{Name: "aq_g5_01"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	deployed := StatusDeployed
	siteID := "site-9"
	updated, err := svc.Update(context.Background(), "airsight", created.ID, UpdateRequest{
		Status: &deployed,
		SiteID: &siteID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusDeployed || updated.SiteID != "site-9" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Name != "aq_g5_01" {
		t.Errorf("untouched field changed: %q", updated.Name)
	}
}

func TestUpdate_MissingDeviceIsNotFound(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	name := "renamed"
	_, err := svc.Update(context.Background(), "airsight", "nope", UpdateRequest{Name: &name})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, err := svc.Register(context.Background(), "airsight", RegisterRequest{Name: "aq_g5_01"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Delete(context.Background(), "airsight", created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), "airsight", created.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not-found on second delete, got %v", err)
	}
}

func TestList_FiltersBySiteAndStatus(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	ctx := context.Background()

	deployed := StatusDeployed
	a, _ := svc.Register(ctx, "airsight", RegisterRequest{Name: "one", SiteID: "s1"})
	if _, err := svc.Update(ctx, "airsight", a.ID, UpdateRequest{Status: &deployed}); err != nil {
		t.Fatalf("update: %v", err)
	}
	svc.Register(ctx, "airsight", RegisterRequest{Name: "two", SiteID: "s2"})
	svc.Register(ctx, "kcca", RegisterRequest{Name: "other tenant", SiteID: "s1"})

	got, err := svc.List(ctx, "airsight", ListOptions{SiteID: "s1", Status: StatusDeployed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "one" {
		t.Errorf("list = %+v", got)
	}
}
