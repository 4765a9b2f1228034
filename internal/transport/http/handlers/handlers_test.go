package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
	authsvc "github.com/aeshtlv/GiftTinder/internal/services/auth"
	feedsvc "github.com/aeshtlv/GiftTinder/internal/services/feed"
	matchessvc "github.com/aeshtlv/GiftTinder/internal/services/matches"
	swipesvc "github.com/aeshtlv/GiftTinder/internal/services/swipes"
	userssvc "github.com/aeshtlv/GiftTinder/internal/services/users"
)

type fixedUserStore struct {
	users map[int64]pgrepo.UserRecord
}

func (s *fixedUserStore) Upsert(_ context.Context, telegramID int64, username, firstName, lastName string) (pgrepo.UserRecord, error) {
	record := pgrepo.UserRecord{
		ID:         telegramID,
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if s.users == nil {
		s.users = map[int64]pgrepo.UserRecord{}
	}
	s.users[telegramID] = record
	return record, nil
}

func (s *fixedUserStore) FindByTelegramID(_ context.Context, telegramID int64) (pgrepo.UserRecord, error) {
	record, ok := s.users[telegramID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func (s *fixedUserStore) ListActive(_ context.Context, _ int) ([]pgrepo.UserRecord, error) {
	items := make([]pgrepo.UserRecord, 0, len(s.users))
	for _, record := range s.users {
		items = append(items, record)
	}
	return items, nil
}

type fixedFeedStore struct {
	record pgrepo.GiftRecord
	err    error
}

func (s *fixedFeedStore) NextUnswiped(_ context.Context, _ int64) (pgrepo.GiftRecord, error) {
	if s.err != nil {
		return pgrepo.GiftRecord{}, s.err
	}
	return s.record, nil
}

type fixedMatchStore struct {
	rows []pgrepo.ActiveMatchRecord
}

func (s *fixedMatchStore) ListActiveForUser(_ context.Context, _ int64, _ int) ([]pgrepo.ActiveMatchRecord, error) {
	return s.rows, nil
}

func (s *fixedMatchStore) Deactivate(_ context.Context, _ pgx.Tx, _, _ int64) (bool, error) {
	return true, nil
}

type denyLimiter struct{}

func (denyLimiter) AllowSwipe(_ context.Context, _ int64) (bool, int64, error) {
	return false, 17, nil
}

func withClaim(r *http.Request, telegramID int64) *http.Request {
	ctx := authsvc.WithClaim(r.Context(), authsvc.UserClaim{TelegramID: telegramID, Username: "tester"})
	return r.WithContext(ctx)
}

func serve(t *testing.T, method, pattern string, handlerFn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Method(method, pattern, handlerFn)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := serve(t, http.MethodGet, "/healthz", NewHealthHandler().Handle, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}

func TestUserGetStatusMapping(t *testing.T) {
	store := &fixedUserStore{users: map[int64]pgrepo.UserRecord{
		42: {ID: 42, TelegramID: 42, Username: "alice", IsActive: true},
	}}
	handler := NewUserHandler(userssvc.NewService(userssvc.Dependencies{UserStore: store}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/42", nil)
	recorder := serve(t, http.MethodGet, "/api/user/{telegram_id}", handler.Get, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("known user status = %d, want 200", recorder.Code)
	}

	var payload struct {
		TelegramID int64  `json:"telegram_id"`
		Username   string `json:"username"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.TelegramID != 42 || payload.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/404", nil)
	recorder = serve(t, http.MethodGet, "/api/user/{telegram_id}", handler.Get, req)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/abc", nil)
	recorder = serve(t, http.MethodGet, "/api/user/{telegram_id}", handler.Get, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", recorder.Code)
	}
}

func TestUserUpsertRequiresClaim(t *testing.T) {
	handler := NewUserHandler(userssvc.NewService(userssvc.Dependencies{UserStore: &fixedUserStore{}}))

	req := httptest.NewRequest(http.MethodPost, "/api/user", nil)
	recorder := serve(t, http.MethodPost, "/api/user", handler.Upsert, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status without claim = %d, want 401", recorder.Code)
	}

	req = withClaim(httptest.NewRequest(http.MethodPost, "/api/user", nil), 7)
	recorder = serve(t, http.MethodPost, "/api/user", handler.Upsert, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status with claim = %d, want 200", recorder.Code)
	}
}

func TestFeedNextGiftNoneSentinel(t *testing.T) {
	handler := NewFeedHandler(feedsvc.NewService(feedsvc.Dependencies{
		FeedStore: &fixedFeedStore{err: pgrepo.ErrNoGiftsLeft},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/next_gift/7", nil)
	recorder := serve(t, http.MethodGet, "/api/next_gift/{telegram_id}", handler.NextGift, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Message != "no more gifts to swipe" {
		t.Fatalf("message = %q, want none-sentinel", payload.Message)
	}
}

func TestFeedNextGiftReturnsCandidate(t *testing.T) {
	handler := NewFeedHandler(feedsvc.NewService(feedsvc.Dependencies{
		FeedStore: &fixedFeedStore{record: pgrepo.GiftRecord{ID: 10, OwnerTelegramID: 2, Name: "Star", IsVisible: true}},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/next_gift/7", nil)
	recorder := serve(t, http.MethodGet, "/api/next_gift/{telegram_id}", handler.NextGift, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var payload struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.ID != 10 || payload.Name != "Star" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSwipeHandlerRejectsUnauthenticated(t *testing.T) {
	handler := NewSwipeHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"gift_id":10,"is_like":true}`))
	recorder := serve(t, http.MethodPost, "/api/swipe", handler.Handle, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestSwipeHandlerRejectsBadBody(t *testing.T) {
	handler := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{}))

	req := withClaim(httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"gift_id":`)), 1)
	recorder := serve(t, http.MethodPost, "/api/swipe", handler.Handle, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("truncated body status = %d, want 400", recorder.Code)
	}

	req = withClaim(httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"gift_id":10,"unknown":1}`)), 1)
	recorder = serve(t, http.MethodPost, "/api/swipe", handler.Handle, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", recorder.Code)
	}

	req = withClaim(httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"is_like":true}`)), 1)
	recorder = serve(t, http.MethodPost, "/api/swipe", handler.Handle, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing gift_id status = %d, want 400", recorder.Code)
	}
}

func TestSwipeHandlerRateLimitPayload(t *testing.T) {
	service := swipesvc.NewService(swipesvc.Dependencies{
		GiftStore:   stubGiftStore{},
		UserStore:   stubUserExists{},
		SwipeStore:  stubSwipeStore{},
		MatchStore:  stubMatchCreate{},
		RateLimiter: denyLimiter{},
	})
	handler := NewSwipeHandler(service)

	req := withClaim(httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"gift_id":10,"is_like":true}`)), 1)
	recorder := serve(t, http.MethodPost, "/api/swipe", handler.Handle, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", recorder.Code)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Code != "SWIPE_LIMIT_REACHED" || payload.RetryAfterSec != 17 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestMatchesListPayload(t *testing.T) {
	store := &fixedMatchStore{rows: []pgrepo.ActiveMatchRecord{
		{ID: 1, TargetTelegramID: 8, Username: "bob", FirstName: "Bob"},
	}}
	handler := NewMatchesHandler(matchessvc.NewService(matchessvc.Dependencies{MatchStore: store}), 100)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/7", nil)
	recorder := serve(t, http.MethodGet, "/api/matches/{telegram_id}", handler.List, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var payload struct {
		Matches []struct {
			TargetTelegramID int64  `json:"target_telegram_id"`
			Username         string `json:"username"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Matches) != 1 || payload.Matches[0].TargetTelegramID != 8 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

// Minimal engine stubs for the rate-limit path; the limiter rejects before
// the transaction starts, so these are never reached.
type stubGiftStore struct{}

func (stubGiftStore) GetByID(_ context.Context, _ pgx.Tx, _ int64) (pgrepo.GiftRecord, error) {
	return pgrepo.GiftRecord{}, pgrepo.ErrGiftNotFound
}

type stubUserExists struct{}

func (stubUserExists) ExistsByTelegramID(_ context.Context, _ pgx.Tx, _ int64) (bool, error) {
	return true, nil
}

type stubSwipeStore struct{}

func (stubSwipeStore) Create(_ context.Context, _ pgx.Tx, _, _ int64, _ bool) (int64, error) {
	return 1, nil
}

func (stubSwipeStore) OwnerLikesBack(_ context.Context, _ pgx.Tx, _, _ int64) (bool, error) {
	return false, nil
}

type stubMatchCreate struct{}

func (stubMatchCreate) CreateActive(_ context.Context, _ pgx.Tx, _, _ int64) (bool, error) {
	return true, nil
}
