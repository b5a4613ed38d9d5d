package profile

import "github.com/hitoshi/fridgelog/internal/model"

// Payload はプロフィール保存リクエストのJSONボディ。
// 省略またはnullの項目は更新しない。
type Payload struct {
	UserID              string    `json:"userId"`
	DisplayName         *string   `json:"displayName"`
	Bio                 *string   `json:"bio"`
	FavoriteIngredients *[]string `json:"favoriteIngredients"`
	RefrigeratorBrand   *string   `json:"refrigeratorBrand"`
}

// Input はPayloadをProfileInputに変換する。
func (p Payload) Input() model.ProfileInput {
	in := model.ProfileInput{
		DisplayName:       p.DisplayName,
		Bio:               p.Bio,
		RefrigeratorBrand: p.RefrigeratorBrand,
	}
	if p.FavoriteIngredients != nil {
		in.FavoriteIngredients = *p.FavoriteIngredients
		in.FavoriteIngredientsSet = true
	}
	return in
}

// MutationResult は保存・削除操作のレスポンスボディ。
type MutationResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// SavedResult は保存成功時のレスポンスを返す。
func SavedResult(userID string) MutationResult {
	return MutationResult{Message: "Profile updated successfully", UserID: userID}
}

// DeletedResult は削除成功時のレスポンスを返す。
func DeletedResult(userID string) MutationResult {
	return MutationResult{Message: "Profile deleted successfully", UserID: userID}
}
