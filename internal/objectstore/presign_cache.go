package objectstore

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type presignEntry struct {
	url       string
	issuedAt  time.Time
	expiresAt time.Time
}

// PresignCache は署名付きURLをLRUでキャッシュするStoreラッパー。
// 有効期限の半分以上が残っている間は同じURLを再利用する。
type PresignCache struct {
	Store
	cache *lru.Cache
	now   func() time.Time
}

// NewPresignCache はPresignCacheを生成する。
func NewPresignCache(store Store, size int) (*PresignCache, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("署名付きURLキャッシュの初期化に失敗しました: %w", err)
	}
	return &PresignCache{Store: store, cache: cache, now: time.Now}, nil
}

// PresignGet はキャッシュ済みの署名付きURLを返す。
// 残り有効期間が半分を下回っている場合は再発行する。
func (c *PresignCache) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	now := c.now()
	if v, ok := c.cache.Get(cacheKey(key, expiry)); ok {
		entry := v.(presignEntry)
		if entry.expiresAt.Sub(now) > entry.expiresAt.Sub(entry.issuedAt)/2 {
			return entry.url, nil
		}
	}

	url, err := c.Store.PresignGet(ctx, key, expiry)
	if err != nil {
		return "", err
	}
	c.cache.Add(cacheKey(key, expiry), presignEntry{
		url:       url,
		issuedAt:  now,
		expiresAt: now.Add(expiry),
	})
	return url, nil
}

// Delete はオブジェクトを削除し、キャッシュ済みURLを無効化する。
func (c *PresignCache) Delete(ctx context.Context, key string) error {
	if err := c.Store.Delete(ctx, key); err != nil {
		return err
	}
	for _, k := range c.cache.Keys() {
		if ck, ok := k.(presignCacheKey); ok && ck.key == key {
			c.cache.Remove(k)
		}
	}
	return nil
}

type presignCacheKey struct {
	key    string
	expiry time.Duration
}

func cacheKey(key string, expiry time.Duration) presignCacheKey {
	return presignCacheKey{key: key, expiry: expiry}
}

var _ Store = (*PresignCache)(nil)
