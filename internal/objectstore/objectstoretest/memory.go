// Package objectstoretest はテスト用のobjectstore.Store実装を提供する。
// 本番の配線からは使用しない。
package objectstoretest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/fridgelog/internal/objectstore"
)

// MemoryObject はMemoryStoreに保存されたオブジェクト。
type MemoryObject struct {
	Body         []byte
	Options      objectstore.PutOptions
	LastModified time.Time
}

// MemoryStore はプロセス内メモリを使用したobjectstore.Store実装。テスト専用。
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
	baseURL string
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。baseURLは公開URLのベースになる。
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]MemoryObject),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// SetClock はLastModifiedに使う時刻の取得関数を差し替える。
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, opts objectstore.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(body))
	copy(copied, body)
	m.objects[key] = MemoryObject{Body: copied, Options: opts, LastModified: m.now()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	copied := make([]byte, len(obj.Body))
	copy(copied, obj.Body)
	return copied, nil
}

// List はキーの辞書順で返す。
func (m *MemoryStore) List(_ context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []objectstore.ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, objectstore.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.Body)),
				LastModified: obj.LastModified,
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, key, int64(expiry.Seconds())), nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return m.baseURL + "/" + key
}

// Object はテスト用に保存済みオブジェクトを返す。
func (m *MemoryStore) Object(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	return obj, ok
}

var _ objectstore.Store = (*MemoryStore)(nil)
