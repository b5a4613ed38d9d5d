package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/fridgelog/internal/fridge"
	"github.com/hitoshi/fridgelog/internal/ingestion"
	"github.com/hitoshi/fridgelog/internal/middleware"
	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/profile"
	"github.com/hitoshi/fridgelog/internal/social"
)

// --- モック定義 ---

type mockFollowService struct {
	dispatchFn func(ctx context.Context, req social.Request) (*social.Response, error)
}

func (m *mockFollowService) Dispatch(ctx context.Context, req social.Request) (*social.Response, error) {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, req)
	}
	return &social.Response{}, nil
}

type mockProfileService struct {
	getFn         func(ctx context.Context, userID string) (*model.UserProfile, error)
	saveFn        func(ctx context.Context, userID string, in model.ProfileInput) (*model.UserProfile, error)
	deleteFn      func(ctx context.Context, userID string) error
	uploadImageFn func(ctx context.Context, userID string, r io.Reader) (string, error)
	imageURLFn    func(ctx context.Context, userID string) (string, error)
	resolveFn     func(ctx context.Context, ev profile.ResolverEvent) (any, error)
}

func (m *mockProfileService) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileService) Save(ctx context.Context, userID string, in model.ProfileInput) (*model.UserProfile, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, in)
	}
	return &model.UserProfile{CognitoUserID: userID}, nil
}

func (m *mockProfileService) Delete(ctx context.Context, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

func (m *mockProfileService) UploadImage(ctx context.Context, userID string, r io.Reader) (string, error) {
	if m.uploadImageFn != nil {
		return m.uploadImageFn(ctx, userID, r)
	}
	return "", nil
}

func (m *mockProfileService) ImageURL(ctx context.Context, userID string) (string, error) {
	if m.imageURLFn != nil {
		return m.imageURLFn(ctx, userID)
	}
	return "", nil
}

func (m *mockProfileService) Resolve(ctx context.Context, ev profile.ResolverEvent) (any, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, ev)
	}
	return nil, nil
}

type mockFridgeService struct {
	uploadFn      func(ctx context.Context, userID string, body io.Reader, now time.Time) (*fridge.UploadResult, error)
	historyFn     func(ctx context.Context, userID string) ([]fridge.HistoryEntry, error)
	itemsFn       func(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error)
	exploreFn     func(ctx context.Context, limit int) ([]fridge.ExploreEntry, error)
	searchUsersFn func(ctx context.Context, query string) ([]fridge.UserSummary, error)
}

func (m *mockFridgeService) Upload(ctx context.Context, userID string, body io.Reader, now time.Time) (*fridge.UploadResult, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, userID, body, now)
	}
	return &fridge.UploadResult{}, nil
}

func (m *mockFridgeService) History(ctx context.Context, userID string) ([]fridge.HistoryEntry, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID)
	}
	return []fridge.HistoryEntry{}, nil
}

func (m *mockFridgeService) Items(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error) {
	if m.itemsFn != nil {
		return m.itemsFn(ctx, userID, limit)
	}
	return []*model.FridgeItem{}, nil
}

func (m *mockFridgeService) Explore(ctx context.Context, limit int) ([]fridge.ExploreEntry, error) {
	if m.exploreFn != nil {
		return m.exploreFn(ctx, limit)
	}
	return []fridge.ExploreEntry{}, nil
}

func (m *mockFridgeService) SearchUsers(ctx context.Context, query string) ([]fridge.UserSummary, error) {
	if m.searchUsersFn != nil {
		return m.searchUsersFn(ctx, query)
	}
	return []fridge.UserSummary{}, nil
}

type mockIngester struct {
	handleEventFn func(ctx context.Context, refs []ingestion.ObjectRef) ([]*ingestion.Result, error)
}

func (m *mockIngester) HandleEvent(ctx context.Context, refs []ingestion.ObjectRef) ([]*ingestion.Result, error) {
	if m.handleEventFn != nil {
		return m.handleEventFn(ctx, refs)
	}
	return nil, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(context.Context) error { return m.err }

type testDeps struct {
	follow  *mockFollowService
	profile *mockProfileService
	fridge  *mockFridgeService
	ingest  *mockIngester
	health  *mockHealthChecker
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const testEventSecret = "test-event-secret"

var withEventSecret = map[string]string{middleware.EventSecretHeader: testEventSecret}

// newTestRouter はモックサービスで構成したルーターを返す。
func newTestRouter() (http.Handler, *testDeps, func()) {
	d := &testDeps{
		follow:  &mockFollowService{},
		profile: &mockProfileService{},
		fridge:  &mockFridgeService{},
		ingest:  &mockIngester{},
		health:  &mockHealthChecker{},
	}
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	router := NewRouter(&RouterDeps{
		Logger:            slogDiscard(),
		CORSAllowedOrigin: "*",
		RateLimiter:       rl,
		EventSecret:       testEventSecret,
		HealthChecker:     d.health,
		FollowService:     d.follow,
		ProfileService:    d.profile,
		FridgeService:     d.fridge,
		EventIngester:     d.ingest,
	})
	return router, d, rl.Stop
}
