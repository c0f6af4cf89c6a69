// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageは呼び出し元に返すメッセージ、Detailはストア層等の下位エラー文字列。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	Detail  string // 下位エラーの詳細（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeStoreError      = "STORE_ERROR"
)

// NewInvalidArgumentError は入力検証エラーを生成する。
// ストアへのアクセス前に検出されることが前提。
func NewInvalidArgumentError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidArgument,
		Message: message,
	}
}

// NewUnauthenticatedError は認証エラーを生成する。
// クレデンシャル不在と、クレデンシャルが削除済みアカウントを指す場合の両方に使う。
func NewUnauthenticatedError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: message,
	}
}

// NewForbiddenError は認可エラーを生成する。
// 有効な認証主体が対象リソースへの権限を持たない場合に使う。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
	}
}

// NewNotFoundError は対象が見つからない場合のエラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// NewStoreError は永続化層の失敗を表すエラーを生成する。
// 詳細は呼び出し元への一般メッセージとは別にDetailに保持する。
func NewStoreError(err error) *APIError {
	return &APIError{
		Code:    ErrCodeStoreError,
		Message: "Database error",
		Detail:  err.Error(),
	}
}
