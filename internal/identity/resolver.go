package identity

import (
	"context"
	"net/http"

	"github.com/datndc/timekeeper/internal/model"
	"github.com/datndc/timekeeper/internal/repository"
)

// UserFinder はユーザー名によるユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Resolver はクレデンシャルを検証済みPrincipalへ解決する。
// モードごとのCredentialSourceを保持し、リクエスト単位で1つだけを選択する。
// Principalはリクエストスコープの値であり、Resolverは状態を持たない。
type Resolver struct {
	users       UserFinder
	sources     map[Mode]CredentialSource
	defaultMode Mode
}

// NewResolver はResolverを生成する。
// defaultModeは配備時の既定モードで、SECURITY_LEVEL Cookieで上書きできる。
func NewResolver(users UserFinder, sessions SessionFinder, defaultMode Mode) *Resolver {
	return &Resolver{
		users: users,
		sources: map[Mode]CredentialSource{
			ModeLow:  CookieSource{},
			ModeHigh: NewSessionSource(sessions),
		},
		defaultMode: defaultMode,
	}
}

// Resolve はリクエストのクレデンシャルを検証済みPrincipalへ解決する。
// クレデンシャル不在はUNAUTHENTICATED。クレデンシャルが存在しても該当ユーザーが
// 見つからない場合（削除済みアカウントを指すCookie/セッション等）もUNAUTHENTICATED
// であり、NOT_FOUNDにはしない。ユーザー検索はストア読み取り1回のみ。
func (rs *Resolver) Resolve(ctx context.Context, r *http.Request) (*model.Principal, error) {
	mode := ModeFromRequest(r, rs.defaultMode)
	source := rs.sources[mode]

	cred, err := source.Credential(ctx, r)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if cred == nil {
		return nil, model.NewUnauthenticatedError("Not authenticated")
	}

	user, err := rs.users.FindByUsername(ctx, cred.Username)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError("User not found")
	}

	return &model.Principal{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// compile-time interface checks
var (
	_ UserFinder    = (repository.UserRepository)(nil)
	_ SessionFinder = (repository.SessionRepository)(nil)
)
