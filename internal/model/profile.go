package model

import "time"

// UserProfile はユーザーごとのプロフィールを表す。
// CognitoUserIDが識別キー。未作成の状態は正常な状態として扱う。
type UserProfile struct {
	CognitoUserID       string    `json:"cognito_user_id"`
	DisplayName         string    `json:"display_name"`
	Bio                 string    `json:"bio"`
	FavoriteIngredients []string  `json:"favorite_ingredients"`
	RefrigeratorBrand   string    `json:"refrigerator_brand"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProfileInput はプロフィール保存時の入力。
// nilのフィールドは保存済みの値を維持する。
type ProfileInput struct {
	DisplayName         *string
	Bio                 *string
	FavoriteIngredients []string
	RefrigeratorBrand   *string

	// FavoriteIngredientsSet はFavoriteIngredientsが明示的に指定されたかを表す。
	// 空配列での上書きとフィールド省略を区別するために使う。
	FavoriteIngredientsSet bool
}

// Apply は入力値を既存プロフィールに部分適用した新しいプロフィールを返す。
// existingがnilの場合は空のプロフィールに適用する。
func (in ProfileInput) Apply(userID string, existing *UserProfile, now time.Time) *UserProfile {
	p := &UserProfile{
		CognitoUserID: userID,
		CreatedAt:     now,
	}
	if existing != nil {
		*p = *existing
		p.FavoriteIngredients = append([]string(nil), existing.FavoriteIngredients...)
	}

	if in.DisplayName != nil {
		p.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.FavoriteIngredientsSet {
		p.FavoriteIngredients = append([]string(nil), in.FavoriteIngredients...)
	}
	if in.RefrigeratorBrand != nil {
		p.RefrigeratorBrand = *in.RefrigeratorBrand
	}
	if p.FavoriteIngredients == nil {
		p.FavoriteIngredients = []string{}
	}
	p.UpdatedAt = now
	return p
}
