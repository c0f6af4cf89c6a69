// Package identity はデュアルモードの本人確認（Identity Resolver）を提供する。
// lowモードは平文Cookieを、highモードはサーバーサイドセッションを信頼ソースとする。
// モードの違いは信頼ソースの選択のみであり、解決後のPrincipalは両モードで同一の
// 認可サーフェスに合流する。
package identity

import (
	"fmt"
	"net/http"
)

// Mode はどのクレデンシャルチャネルを信頼するかを表すセキュリティモード。
type Mode string

const (
	// ModeLow は平文Cookieによる自己申告の身元を信頼するモード。
	// 意図的に弱い比較用ベースラインであり、highモードと統合してはならない。
	ModeLow Mode = "low"
	// ModeHigh はサーバーサイドセッションを信頼するモード。
	ModeHigh Mode = "high"
)

// securityModeCookie はリクエスト単位でモードを上書きするCookie名。
const securityModeCookie = "SECURITY_LEVEL"

// ParseMode は文字列をModeに変換する。low/high以外はエラーを返す。
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLow, ModeHigh:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid security mode: %q (expected low or high)", s)
	}
}

// ModeFromRequest はリクエストに適用するモードを決定する。
// SECURITY_LEVEL Cookieが有効な値であればそれを優先し、なければfallbackを返す。
// 1リクエストにつき参照されるチャネルは常に1つだけになる。
func ModeFromRequest(r *http.Request, fallback Mode) Mode {
	cookie, err := r.Cookie(securityModeCookie)
	if err != nil || cookie.Value == "" {
		return fallback
	}
	mode, err := ParseMode(cookie.Value)
	if err != nil {
		return fallback
	}
	return mode
}
