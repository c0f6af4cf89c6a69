// Package user はユーザープロフィールと従業員一覧のドメインロジックを提供する。
package user

import (
	"context"

	"github.com/datndc/timekeeper/internal/model"
	"github.com/datndc/timekeeper/internal/repository"
)

// Service はユーザー参照のサービス層。読み取り専用。
type Service struct {
	users repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Profile は指定IDのユーザープロフィールを返す。
// 解決済みPrincipalのIDで呼ばれる前提のため、見つからない場合は
// UNAUTHENTICATEDを返す（解決とプロフィール取得の間に削除された場合）。
func (s *Service) Profile(ctx context.Context, id int) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if u == nil {
		return nil, model.NewUnauthenticatedError("User not found")
	}
	return u, nil
}

// ListEmployees は全従業員の {id, username, fullname} をID昇順で返す。
// 勤怠入力画面の従業員セレクタ用で、認可フィルタは適用しない（公開読み取り）。
func (s *Service) ListEmployees(ctx context.Context) ([]model.EmployeeSummary, error) {
	employees, err := s.users.ListEmployees(ctx)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	return employees, nil
}
