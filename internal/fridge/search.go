package fridge

import (
	"context"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/hitoshi/fridgelog/internal/objectkey"
)

// userSource はfuzzy.Sourceを実装する。比較は小文字で行う。
type userSource []UserSummary

func (u userSource) String(i int) string { return strings.ToLower(u[i].UserID) }

func (u userSource) Len() int { return len(u) }

// SearchUsers は画像を投稿したユーザーをあいまい検索する。
// queryが空の場合は全ユーザーをユーザーID順に返す。一致したユーザーは関連度順。
func (s *Service) SearchUsers(ctx context.Context, query string) ([]UserSummary, error) {
	images, err := s.listImages(ctx, objectkey.FridgeContentsPrefix)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, obj := range images {
		if userID, ok := objectkey.UserIDFromFridgeKey(obj.Key); ok {
			counts[userID]++
		}
	}

	users := make(userSource, 0, len(counts))
	for userID, n := range counts {
		users = append(users, UserSummary{UserID: userID, PostCount: n})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users, nil
	}

	matches := fuzzy.FindFrom(query, users)
	result := make([]UserSummary, 0, len(matches))
	for _, m := range matches {
		result = append(result, users[m.Index])
	}
	return result, nil
}
