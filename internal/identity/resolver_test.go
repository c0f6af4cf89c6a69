package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/datndc/timekeeper/internal/model"
)

// --- モック定義 ---

type mockUserFinder struct {
	findCalls  int
	findByFn   func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserFinder) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.findCalls++
	if m.findByFn != nil {
		return m.findByFn(ctx, username)
	}
	return nil, nil
}

type mockSessionFinder struct {
	findCalls int
	findByFn  func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	m.findCalls++
	if m.findByFn != nil {
		return m.findByFn(ctx, id)
	}
	return nil, nil
}

func adminUser() *model.User {
	return &model.User{
		ID:       1,
		Username: "datndc1",
		Role:     model.RoleAdmin,
		Fullname: "Nguyen Duc Chi Dat",
	}
}

func assertUnauthenticated(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthenticated {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthenticated)
	}
}

// --- lowモード ---

// lowモード: current_user Cookieのユーザー名でPrincipalが解決されることを検証する。
func TestResolver_LowMode_CookieUsername_ResolvesPrincipal(t *testing.T) {
	users := &mockUserFinder{
		findByFn: func(ctx context.Context, username string) (*model.User, error) {
			if username != "datndc1" {
				t.Errorf("username = %q, want %q", username, "datndc1")
			}
			return adminUser(), nil
		},
	}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "current_user", Value: "datndc1"})

	principal, err := rs.Resolve(req.Context(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if principal.ID != 1 || principal.Username != "datndc1" || principal.Role != model.RoleAdmin {
		t.Errorf("principal = %+v, want {1 datndc1 admin}", principal)
	}
	if users.findCalls != 1 {
		t.Errorf("user store reads = %d, want 1", users.findCalls)
	}
}

// lowモード: Cookie不在時にX-Usernameヘッダーへフォールバックすることを検証する。
func TestResolver_LowMode_HeaderFallback(t *testing.T) {
	users := &mockUserFinder{
		findByFn: func(ctx context.Context, username string) (*model.User, error) {
			if username != "user1" {
				t.Errorf("username = %q, want %q", username, "user1")
			}
			return &model.User{ID: 2, Username: "user1", Role: model.RoleUser}, nil
		},
	}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.Header.Set("X-Username", "user1")

	principal, err := rs.Resolve(req.Context(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if principal.ID != 2 {
		t.Errorf("principal.ID = %d, want 2", principal.ID)
	}
}

// lowモード: クレデンシャル不在はストアに触れずにUNAUTHENTICATEDになることを検証する。
func TestResolver_LowMode_NoCredential_Unauthenticated(t *testing.T) {
	users := &mockUserFinder{}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
	if users.findCalls != 0 {
		t.Errorf("user store reads = %d, want 0", users.findCalls)
	}
}

// lowモード: 番兵値"anonymous"は不在と同じ扱いになることを検証する。
func TestResolver_LowMode_AnonymousSentinel_Unauthenticated(t *testing.T) {
	users := &mockUserFinder{}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "current_user", Value: "anonymous"})

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
	if users.findCalls != 0 {
		t.Errorf("user store reads = %d, want 0", users.findCalls)
	}
}

// Cookie/セッションが削除済みアカウントを指す場合、NOT_FOUNDではなく
// UNAUTHENTICATEDになることを検証する。
func TestResolver_UnknownUsername_UnauthenticatedNotNotFound(t *testing.T) {
	users := &mockUserFinder{
		findByFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
	}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "current_user", Value: "ghost"})

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
}

// --- highモード ---

// highモード: 有効なセッションからPrincipalが解決されることを検証する。
func TestResolver_HighMode_ValidSession_ResolvesPrincipal(t *testing.T) {
	sessions := &mockSessionFinder{
		findByFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id != "sess-1" {
				t.Errorf("session id = %q, want %q", id, "sess-1")
			}
			return &model.Session{
				ID:        "sess-1",
				Username:  "datndc1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	users := &mockUserFinder{
		findByFn: func(ctx context.Context, username string) (*model.User, error) {
			return adminUser(), nil
		},
	}
	rs := NewResolver(users, sessions, ModeHigh)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})

	principal, err := rs.Resolve(req.Context(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if principal.Username != "datndc1" {
		t.Errorf("principal.Username = %q, want %q", principal.Username, "datndc1")
	}
	if users.findCalls != 1 {
		t.Errorf("user store reads = %d, want 1", users.findCalls)
	}
}

// highモード: セッションCookie不在はストアに一切触れないことを検証する。
func TestResolver_HighMode_NoSessionCookie_ZeroStoreReads(t *testing.T) {
	sessions := &mockSessionFinder{}
	users := &mockUserFinder{}
	rs := NewResolver(users, sessions, ModeHigh)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
	if sessions.findCalls != 0 {
		t.Errorf("session store reads = %d, want 0", sessions.findCalls)
	}
	if users.findCalls != 0 {
		t.Errorf("user store reads = %d, want 0", users.findCalls)
	}
}

// highモード: セッションはあるがユーザー名が空の場合はUNAUTHENTICATEDになり、
// ユーザー検索は行われないことを検証する。
func TestResolver_HighMode_SessionWithoutUsername_Unauthenticated(t *testing.T) {
	sessions := &mockSessionFinder{
		findByFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id}, nil
		},
	}
	users := &mockUserFinder{}
	rs := NewResolver(users, sessions, ModeHigh)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-2"})

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
	if users.findCalls != 0 {
		t.Errorf("user store reads = %d, want 0", users.findCalls)
	}
}

// highモード: lowモード用のCookieがあってもセッションチャネルのみが参照されることを検証する。
func TestResolver_HighMode_IgnoresCookieChannel(t *testing.T) {
	sessions := &mockSessionFinder{}
	users := &mockUserFinder{}
	rs := NewResolver(users, sessions, ModeHigh)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "current_user", Value: "datndc1"})

	_, err := rs.Resolve(req.Context(), req)
	assertUnauthenticated(t, err)
	if users.findCalls != 0 {
		t.Errorf("user store reads = %d, want 0", users.findCalls)
	}
}

// ストア障害はSTORE_ERRORとして伝播することを検証する。
func TestResolver_StoreFailure_ReturnsStoreError(t *testing.T) {
	users := &mockUserFinder{
		findByFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	rs := NewResolver(users, &mockSessionFinder{}, ModeLow)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance", nil)
	req.AddCookie(&http.Cookie{Name: "current_user", Value: "datndc1"})

	_, err := rs.Resolve(req.Context(), req)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeStoreError {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeStoreError)
	}
	if apiErr.Detail != "connection refused" {
		t.Errorf("detail = %q, want %q", apiErr.Detail, "connection refused")
	}
}

// --- モード選択 ---

// SECURITY_LEVEL Cookieによるリクエスト単位のモード上書きを検証する。
func TestModeFromRequest_CookieOverride(t *testing.T) {
	tests := []struct {
		name     string
		cookie   string
		fallback Mode
		want     Mode
	}{
		{"Cookie無しはfallback", "", ModeLow, ModeLow},
		{"highへの上書き", "high", ModeLow, ModeHigh},
		{"lowへの上書き", "low", ModeHigh, ModeLow},
		{"不正値はfallback", "medium", ModeHigh, ModeHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "SECURITY_LEVEL", Value: tt.cookie})
			}
			if got := ModeFromRequest(req, tt.fallback); got != tt.want {
				t.Errorf("ModeFromRequest = %q, want %q", got, tt.want)
			}
		})
	}
}

// ParseModeがlow/high以外を拒否することを検証する。
func TestParseMode_RejectsUnknownValues(t *testing.T) {
	if _, err := ParseMode("medium"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := ParseMode(""); err == nil {
		t.Error("expected error for empty mode")
	}
}
