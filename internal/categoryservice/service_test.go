package categoryservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/categoryservice"
	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/testutil"
)

func TestCategoryCRUD(t *testing.T) {
	svc := categoryservice.NewService(testutil.TestStore(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Category{Name: "work", Description: "work notes", CreatedBy: "alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("empty id must be generated")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "work" || got.CreatedBy != "alice" {
		t.Errorf("category = %+v", got)
	}

	updated, err := svc.Update(ctx, created.ID, models.Category{Name: "work-2", Description: "renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "work-2" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.CreatedBy != "alice" {
		t.Errorf("creator must survive updates, got %q", updated.CreatedBy)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
}

func TestCategoryDuplicateID(t *testing.T) {
	svc := categoryservice.NewService(testutil.TestStore(t))
	ctx := context.Background()

	if _, err := svc.Create(ctx, models.Category{ID: "c1", Name: "a"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, models.Category{ID: "c1", Name: "b"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCategoryMissing(t *testing.T) {
	svc := categoryservice.NewService(testutil.TestStore(t))
	ctx := context.Background()

	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "ghost", models.Category{Name: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete: err = %v, want ErrNotFound", err)
	}
}
