package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/datndc/timekeeper/internal/model"
)

const (
	// currentUserCookie はlowモードで身元を自己申告するCookie名。
	currentUserCookie = "current_user"
	// usernameHeader はlowモードでCookie不在時に参照するヘッダー名。
	usernameHeader = "X-Username"
	// sessionCookie はhighモードのセッションID Cookie名。
	sessionCookie = "session_id"

	// anonymousSentinel は旧来の「匿名」を示す番兵値。
	// この値のクレデンシャルは構造的な不在として扱う。
	anonymousSentinel = "anonymous"
)

// Credential は未検証のクレデンシャル（主張されたユーザー名）を表す。
// 不在はnilポインタで構造的に表現し、番兵文字列では表現しない。
type Credential struct {
	Username string
}

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// CredentialSource はリクエストからクレデンシャルを取り出す能力を表す。
// 2つの実装（CookieSource, SessionSource）があり、Resolverが設定された
// モードに応じて1つだけを選択する。
type CredentialSource interface {
	// Credential はリクエストからクレデンシャルを取り出す。
	// クレデンシャルが存在しない場合は (nil, nil) を返す。
	Credential(ctx context.Context, r *http.Request) (*Credential, error)
}

// CookieSource はlowモードの信頼ソース。
// current_user Cookie、なければX-Usernameヘッダーから身元の主張を読み取る。
type CookieSource struct{}

// Credential はCookieまたはヘッダーからユーザー名の主張を読み取る。
// 空値および番兵値"anonymous"は不在として扱う。ストアには一切アクセスしない。
func (CookieSource) Credential(_ context.Context, r *http.Request) (*Credential, error) {
	username := ""
	if cookie, err := r.Cookie(currentUserCookie); err == nil {
		username = cookie.Value
	}
	if username == "" {
		username = r.Header.Get(usernameHeader)
	}

	if username == "" || username == anonymousSentinel {
		return nil, nil
	}
	return &Credential{Username: username}, nil
}

// SessionSource はhighモードの信頼ソース。
// session_id Cookieからサーバーサイドセッションを引き、その保持ユーザー名を返す。
type SessionSource struct {
	sessions SessionFinder
}

// NewSessionSource はSessionSourceを生成する。
func NewSessionSource(sessions SessionFinder) *SessionSource {
	return &SessionSource{sessions: sessions}
}

// Credential はセッションCookieからクレデンシャルを取り出す。
// Cookieが無い場合はストアに触れずに不在を返す。セッションが見つからない、
// 期限切れ、またはユーザー名が空の場合も不在として扱う。
func (s *SessionSource) Credential(ctx context.Context, r *http.Request) (*Credential, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	session, err := s.sessions.FindByID(ctx, cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil || session.Username == "" {
		return nil, nil
	}

	return &Credential{Username: session.Username}, nil
}
