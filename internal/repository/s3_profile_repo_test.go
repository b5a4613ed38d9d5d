package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectstore"
	"github.com/hitoshi/fridgelog/internal/objectstore/objectstoretest"
)

func TestS3ProfileRepo_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	store := objectstoretest.NewMemoryStore("https://bucket.example.com")
	repo := NewS3ProfileRepo(store)

	got, err := repo.FindByUserID(ctx, "u1")
	if err != nil || got != nil {
		t.Fatalf("expected nil profile for missing user, got %+v, %v", got, err)
	}

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	want := &model.UserProfile{
		CognitoUserID:       "u1",
		DisplayName:         "Alice",
		FavoriteIngredients: []string{"Tofu"},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	obj, ok := store.Object("profiles/u1.json")
	if !ok {
		t.Fatal("expected document at profiles/u1.json")
	}
	if obj.Options.ContentType != "application/json" {
		t.Errorf("unexpected content type %q", obj.Options.ContentType)
	}

	got, err = repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID returned error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	if err := repo.DeleteByUserID(ctx, "u1"); err != nil {
		t.Fatalf("DeleteByUserID returned error: %v", err)
	}
	if got, _ := repo.FindByUserID(ctx, "u1"); got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestS3ProfileRepo_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := objectstoretest.NewMemoryStore("https://bucket.example.com")
	_ = store.Put(ctx, "profiles/u1.json", []byte("{not json"), objectstore.PutOptions{})

	if _, err := NewS3ProfileRepo(store).FindByUserID(ctx, "u1"); err == nil {
		t.Fatal("expected decode error for corrupt document")
	}
}
