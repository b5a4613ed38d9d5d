package objectstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/fridgelog/internal/objectstore"
)

func TestMemoryStore_ListFiltersByPrefix(t *testing.T) {
	store := NewMemoryStore("https://m")
	ctx := context.Background()
	_ = store.Put(ctx, "fridge-contents/u1/b.jpg", []byte("b"), objectstore.PutOptions{})
	_ = store.Put(ctx, "fridge-contents/u1/a.jpg", []byte("a"), objectstore.PutOptions{})
	_ = store.Put(ctx, "fridge-contents/u2/c.jpg", []byte("c"), objectstore.PutOptions{})

	objects, err := store.List(ctx, "fridge-contents/u1/")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(objects) != 2 || objects[0].Key != "fridge-contents/u1/a.jpg" {
		t.Errorf("unexpected objects: %+v", objects)
	}

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore("https://m")
	ctx := context.Background()
	store.SetClock(func() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) })
	_ = store.Put(ctx, "k.json", []byte("abc"), objectstore.PutOptions{ContentType: "application/json"})

	got, _ := store.Get(ctx, "k.json")
	got[0] = 'x'

	obj, ok := store.Object("k.json")
	if !ok || string(obj.Body) != "abc" {
		t.Errorf("stored body changed: %q", obj.Body)
	}
	if obj.Options.ContentType != "application/json" || obj.LastModified.Day() != 15 {
		t.Errorf("unexpected object %+v", obj)
	}
}
