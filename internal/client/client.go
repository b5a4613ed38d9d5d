// Package client はfridgelog HTTP APIのGoクライアントを提供する。
// アップロード後の検出結果待ちと、画像URLの並列解決を含む。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/fridgelog/internal/fridge"
	"github.com/hitoshi/fridgelog/internal/middleware"
	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/profile"
	"github.com/hitoshi/fridgelog/internal/social"
)

// ResponseError はAPIが2xx以外を返した場合のエラー。
type ResponseError struct {
	StatusCode int
	Body       middleware.ErrorResponseBody
}

// Error はerrorインターフェースを実装する。
func (e *ResponseError) Error() string {
	if e.Body.Code == "" {
		return fmt.Sprintf("APIがステータス %d を返しました", e.StatusCode)
	}
	return fmt.Sprintf("APIがステータス %d を返しました: [%s] %s", e.StatusCode, e.Body.Code, e.Body.Message)
}

// Client はfridgelog APIのクライアント。
// UserIDは呼び出し元ユーザーとして X-User-Id ヘッダーで送信する。
type Client struct {
	BaseURL    string
	UserID     string
	HTTPClient *http.Client
}

// New はClientを生成する。
func New(baseURL, userID string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserID:     userID,
		HTTPClient: http.DefaultClient,
	}
}

// UploadFridgeImage はJPEG画像をアップロードする。
func (c *Client) UploadFridgeImage(ctx context.Context, image io.Reader) (*fridge.UploadResult, error) {
	var result fridge.UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/fridge-images", "image/jpeg", image, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History は呼び出し元ユーザーのアップロード履歴を新しい順に返す。
func (c *Client) History(ctx context.Context) ([]fridge.HistoryEntry, error) {
	var entries []fridge.HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/api/fridge-images", "", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Follow は呼び出し元ユーザーがtargetIDをフォローする。
func (c *Client) Follow(ctx context.Context, targetID string) error {
	_, err := c.follow(ctx, social.ActionFollow, targetID)
	return err
}

// Unfollow はtargetIDのフォローを解除する。
func (c *Client) Unfollow(ctx context.Context, targetID string) error {
	_, err := c.follow(ctx, social.ActionUnfollow, targetID)
	return err
}

// CheckFollow はtargetIDをフォロー中かどうかを返す。
func (c *Client) CheckFollow(ctx context.Context, targetID string) (bool, error) {
	resp, err := c.follow(ctx, social.ActionCheckFollow, targetID)
	if err != nil {
		return false, err
	}
	return resp.IsFollowing != nil && *resp.IsFollowing, nil
}

// GetFollowing は呼び出し元ユーザーのフォロー一覧を返す。
func (c *Client) GetFollowing(ctx context.Context) ([]model.FollowingEntry, error) {
	resp, err := c.follow(ctx, social.ActionGetFollowing, "")
	if err != nil {
		return nil, err
	}
	if resp.Following == nil {
		return []model.FollowingEntry{}, nil
	}
	return resp.Following, nil
}

func (c *Client) follow(ctx context.Context, action, targetID string) (*social.Response, error) {
	body, err := json.Marshal(social.Request{
		FollowerID:  c.UserID,
		FollowingID: targetID,
		Action:      action,
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	var resp social.Response
	if err := c.do(ctx, http.MethodPost, "/api/follow", "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile はプロフィールを返す。未作成の場合はnilを返す。
func (c *Client) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var p *model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(userID), "", nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProfile はプロフィールを部分更新する。nilの項目は変更しない。
func (c *Client) SaveProfile(ctx context.Context, userID string, payload profile.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}
	var result profile.MutationResult
	return c.do(ctx, http.MethodPost, "/api/profiles/"+url.PathEscape(userID), "application/json", bytes.NewReader(body), &result)
}

// do はリクエストを送信し、2xxならレスポンスをoutにデコードする。
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.UserID != "" {
		req.Header.Set(middleware.UserIDHeader, c.UserID)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s の呼び出しに失敗しました: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respErr := &ResponseError{StatusCode: resp.StatusCode}
		// ボディが統一エラーフォーマットでなくてもステータスは返す
		_ = json.NewDecoder(resp.Body).Decode(&respErr.Body)
		return respErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return nil
}
