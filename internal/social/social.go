// Package social はユーザー間のフォロー関係を扱う。
package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fridgelog/internal/metrics"
	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/repository"
)

// 受け付けるアクション
const (
	ActionFollow       = "follow"
	ActionUnfollow     = "unfollow"
	ActionCheckFollow  = "checkFollow"
	ActionGetFollowing = "getFollowing"
)

// Request はフォロー操作のリクエストボディ。
type Request struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
	Action      string `json:"action"`
}

// Response はフォロー操作のレスポンスボディ。
// アクションに応じて {message}、{isFollowing}、{following} のいずれかの形になる。
type Response struct {
	Message     string                 `json:"message,omitempty"`
	FollowID    string                 `json:"followId,omitempty"`
	IsFollowing *bool                  `json:"isFollowing,omitempty"`
	Following   []model.FollowingEntry `json:"following,omitempty"`
}

// MarshalJSON はgetFollowingの結果が0件でも "following": [] を出力する。
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Following != nil {
		return json.Marshal(struct {
			Following []model.FollowingEntry `json:"following"`
		}{r.Following})
	}
	type plain Response
	return json.Marshal(plain(r))
}

// Service はフォロー関係の操作を提供する。
type Service struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	items    repository.FridgeItemRepository
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// NewService はServiceを生成する。
// profilesとitemsはフォロー一覧の補完に使用し、nilの場合は補完しない。
func NewService(
	follows repository.FollowRepository,
	profiles repository.ProfileRepository,
	items repository.FridgeItemRepository,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		follows:  follows,
		profiles: profiles,
		items:    items,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// Follow はフォロー関係を作成する。既にフォロー済みの場合は何もしない。
// 作成または既存の関係のIDを返す。
func (s *Service) Follow(ctx context.Context, followerID, followingID string) (string, error) {
	if followerID == followingID {
		return "", model.NewSelfFollowError()
	}

	edge := &model.FollowEdge{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.follows.Create(ctx, edge)
	if err != nil {
		return "", err
	}
	if !created {
		s.logger.Debug("follow already exists",
			slog.String("follower_id", followerID),
			slog.String("following_id", followingID),
		)
		return "", nil
	}
	return edge.ID, nil
}

// Unfollow はフォロー関係を削除する。存在しない場合も成功とする。
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	return s.follows.Delete(ctx, followerID, followingID)
}

// IsFollowing はfollowerIDがfollowingIDをフォローしているかを返す。
func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.follows.Exists(ctx, followerID, followingID)
}

// ListFollowing はフォロー中のユーザーをフォロー日時の降順で返す。
// 各エントリはプロフィールと最新の冷蔵庫画像で補完する。プロフィールがない場合は空欄のまま返す。
func (s *Service) ListFollowing(ctx context.Context, followerID string) ([]model.FollowingEntry, error) {
	edges, err := s.follows.ListByFollower(ctx, followerID)
	if err != nil {
		return nil, err
	}

	entries := make([]model.FollowingEntry, 0, len(edges))
	for _, edge := range edges {
		entry := model.FollowingEntry{
			FollowingID: edge.FollowingID,
			FollowedAt:  edge.CreatedAt,
		}

		if s.profiles != nil {
			p, err := s.profiles.FindByUserID(ctx, edge.FollowingID)
			if err != nil {
				return nil, fmt.Errorf("フォロー先プロフィールの取得に失敗しました: %w", err)
			}
			if p != nil {
				entry.DisplayName = p.DisplayName
				entry.Bio = p.Bio
				entry.RefrigeratorBrand = p.RefrigeratorBrand
			}
		}

		if s.items != nil {
			latest, err := s.items.LatestImageByUser(ctx, edge.FollowingID)
			if err != nil {
				return nil, fmt.Errorf("フォロー先の最新画像の取得に失敗しました: %w", err)
			}
			entry.LatestFridgeImage = latest
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// Dispatch はリクエストを検証し、アクションに応じた操作を実行する。
func (s *Service) Dispatch(ctx context.Context, req Request) (*Response, error) {
	resp, err := s.dispatch(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			outcome = "invalid"
		}
	}
	s.metrics.RecordFollowAction(metricAction(req.Action), outcome)
	return resp, err
}

func (s *Service) dispatch(ctx context.Context, req Request) (*Response, error) {
	switch req.Action {
	case ActionFollow, ActionUnfollow, ActionCheckFollow, ActionGetFollowing:
	default:
		return nil, model.NewInvalidActionError(req.Action)
	}

	if req.FollowerID == "" {
		return nil, model.NewInvalidRequestError("follower_idは必須です")
	}
	if req.Action != ActionGetFollowing && req.FollowingID == "" {
		return nil, model.NewInvalidRequestError("following_idは必須です")
	}

	switch req.Action {
	case ActionFollow:
		id, err := s.Follow(ctx, req.FollowerID, req.FollowingID)
		if err != nil {
			return nil, err
		}
		return &Response{Message: "Successfully followed user", FollowID: id}, nil

	case ActionUnfollow:
		if err := s.Unfollow(ctx, req.FollowerID, req.FollowingID); err != nil {
			return nil, err
		}
		return &Response{Message: "Successfully unfollowed user"}, nil

	case ActionCheckFollow:
		following, err := s.IsFollowing(ctx, req.FollowerID, req.FollowingID)
		if err != nil {
			return nil, err
		}
		return &Response{IsFollowing: &following}, nil

	default:
		entries, err := s.ListFollowing(ctx, req.FollowerID)
		if err != nil {
			return nil, err
		}
		return &Response{Following: entries}, nil
	}
}

// metricAction は未知のアクションをラベルの種類が増えないよう1つにまとめる。
func metricAction(action string) string {
	switch action {
	case ActionFollow, ActionUnfollow, ActionCheckFollow, ActionGetFollowing:
		return action
	default:
		return "unknown"
	}
}
