package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/datndc/timekeeper/internal/model"
)

// errorResponse は統一エラーフォーマット。
// Errorにはストア層等の下位エラー詳細が入る（任意）。
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, message, detail string) {
	writeJSON(w, statusCode, errorResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeStoreError {
			slog.Error("store error", slog.String("detail", apiErr.Detail))
		}
		writeErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message, apiErr.Detail)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeStoreError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
