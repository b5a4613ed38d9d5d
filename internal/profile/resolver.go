package profile

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// 名前付き操作のフィールド名
const (
	FieldGetProfile    = "getProfile"
	FieldUpdateProfile = "updateProfile"
	FieldDeleteProfile = "deleteProfile"
)

// ResolverEvent は名前付き操作形式のリクエスト。
// AppSyncのダイレクトLambdaリゾルバーが渡すイベントと同じ形をしている。
type ResolverEvent struct {
	FieldName string                         `json:"fieldName"`
	Arguments ResolverArguments              `json:"arguments"`
	Identity  *events.AppSyncCognitoIdentity `json:"identity,omitempty"`
}

// ResolverArguments は名前付き操作の引数。
type ResolverArguments struct {
	UserID string   `json:"userId"`
	Input  *Payload `json:"input"`
}

// TargetUserID は操作対象のユーザーIDを決める。
// input.userId、arguments.userId、呼び出し元のsubの順に参照する。
func (e ResolverEvent) TargetUserID() string {
	if e.Arguments.Input != nil && e.Arguments.Input.UserID != "" {
		return e.Arguments.Input.UserID
	}
	if e.Arguments.UserID != "" {
		return e.Arguments.UserID
	}
	if e.Identity != nil {
		return e.Identity.Sub
	}
	return ""
}

// Resolve は名前付き操作を実行する。
// getProfileはプロフィール（未作成ならnil）、updateProfileは保存後のプロフィール、
// deleteProfileはMutationResultを返す。
func (s *Service) Resolve(ctx context.Context, ev ResolverEvent) (any, error) {
	userID := ev.TargetUserID()

	switch ev.FieldName {
	case FieldGetProfile:
		p, err := s.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		return p, nil
	case FieldUpdateProfile:
		if ev.Arguments.Input == nil {
			return nil, invalidRequest("inputが指定されていません")
		}
		return s.Save(ctx, userID, ev.Arguments.Input.Input())
	case FieldDeleteProfile:
		if err := s.Delete(ctx, userID); err != nil {
			return nil, err
		}
		return DeletedResult(userID), nil
	default:
		return nil, invalidRequest(fmt.Sprintf("未対応の操作です: %q", ev.FieldName))
	}
}
