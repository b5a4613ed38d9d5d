// Package objectstore はオブジェクトストレージ（画像・JSONドキュメント）へのアクセスを提供する。
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound は指定キーのオブジェクトが存在しないことを表す。
var ErrNotFound = errors.New("object not found")

// ObjectInfo は一覧取得で返されるオブジェクトのメタデータ。
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// PutOptions はオブジェクト書き込み時のオプション。
type PutOptions struct {
	ContentType string
	// PublicRead はオブジェクトを公開読み取り可能にする。
	PublicRead bool
	Metadata   map[string]string
}

// Store はオブジェクトストレージのインターフェース。
type Store interface {
	// Put はオブジェクトを書き込む。同一キーが存在する場合は上書きする。
	Put(ctx context.Context, key string, body []byte, opts PutOptions) error

	// Get はオブジェクトを読み込む。存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, key string) ([]byte, error)

	// List はプレフィックスに一致する全オブジェクトを返す。
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete はオブジェクトを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error

	// PresignGet は期限付きの読み取り用署名付きURLを発行する。
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PublicURL は公開読み取りオブジェクトのURLを返す。
	PublicURL(key string) string
}
