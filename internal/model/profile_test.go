package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestProfileInput_Apply_NewProfile(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := ProfileInput{
		DisplayName: strPtr("Alice"),
	}

	got := in.Apply("alice", nil, now)

	want := &UserProfile{
		CognitoUserID:       "alice",
		DisplayName:         "Alice",
		FavoriteIngredients: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

// 省略したフィールドは既存の値が維持されることを検証する
func TestProfileInput_Apply_PreservesUnsetFields(t *testing.T) {
	created := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	existing := &UserProfile{
		CognitoUserID:       "alice",
		DisplayName:         "Alice",
		Bio:                 "cook",
		FavoriteIngredients: []string{"Egg"},
		RefrigeratorBrand:   "Panasonic",
		CreatedAt:           created,
		UpdatedAt:           created,
	}

	got := ProfileInput{Bio: strPtr("chef")}.Apply("alice", existing, now)

	if got.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Alice")
	}
	if got.Bio != "chef" {
		t.Errorf("Bio = %q, want %q", got.Bio, "chef")
	}
	if diff := cmp.Diff([]string{"Egg"}, got.FavoriteIngredients); diff != "" {
		t.Errorf("FavoriteIngredients mismatch (-want +got):\n%s", diff)
	}
	if got.RefrigeratorBrand != "Panasonic" {
		t.Errorf("RefrigeratorBrand = %q, want %q", got.RefrigeratorBrand, "Panasonic")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
	// 既存プロフィールは変更されない
	if existing.Bio != "cook" {
		t.Errorf("existing profile was mutated: Bio = %q", existing.Bio)
	}
}

func TestProfileInput_Apply_ExplicitEmptyIngredients(t *testing.T) {
	existing := &UserProfile{CognitoUserID: "alice", FavoriteIngredients: []string{"Egg", "Milk"}}

	got := ProfileInput{FavoriteIngredientsSet: true}.Apply("alice", existing, time.Now())

	if len(got.FavoriteIngredients) != 0 {
		t.Errorf("FavoriteIngredients = %v, want empty", got.FavoriteIngredients)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewInvalidActionError("poke")
	if err.Error() != `[INVALID_ACTION] 無効なアクションです: "poke"` {
		t.Errorf("Error() = %q", err.Error())
	}
}
