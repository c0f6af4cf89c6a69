package handler

import (
	"context"
	"net/http"

	"github.com/datndc/timekeeper/internal/identity"
	"github.com/datndc/timekeeper/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Profile(ctx context.Context, id int) (*model.User, error)
	ListEmployees(ctx context.Context) ([]model.EmployeeSummary, error)
}

// UserHandler はユーザー参照のHTTPハンドラー。
type UserHandler struct {
	resolver    IdentityResolver
	service     UserServiceInterface
	defaultMode identity.Mode
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(resolver IdentityResolver, service UserServiceInterface, defaultMode identity.Mode) *UserHandler {
	return &UserHandler{
		resolver:    resolver,
		service:     service,
		defaultMode: defaultMode,
	}
}

// userResponse は現在ユーザーのレスポンス表現。
type userResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

// employeeResponse は従業員一覧のレスポンス表現。
type employeeResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// Me は現在の認証主体のプロフィールを返す。
// GET /api/users/me
//
// lowモードでは本人確認が自己申告ベースであることを示すwarningを付ける。
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, err := h.resolver.Resolve(r.Context(), r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	mode := identity.ModeFromRequest(r, h.defaultMode)

	resp := map[string]interface{}{
		"success": true,
		"user": userResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
			Location: user.Location,
		},
		"security_level": string(mode),
	}
	if mode == identity.ModeLow {
		resp["warning"] = "Low security mode: identity is self-reported and not verified"
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListEmployees は全従業員の一覧をID昇順で返す。
// GET /api/employees
//
// 勤怠入力画面の従業員セレクタ用の公開読み取りで、身元解決は行わない。
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	users := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		users = append(users, employeeResponse{
			ID:       e.ID,
			Username: e.Username,
			Fullname: e.Fullname,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}
