package middleware

import (
	"net/http"
	"strings"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/token"
)

// TokenVerifier はアクセストークン検証に必要なインターフェース。
// token.Issuerの部分集合として定義する。
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*token.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証する
// ミドルウェアを返す。検証済みの識別情報をリクエストコンテキストに注入する。
//
// ステータスコードの非対称性は参照実装から引き継いだもの:
// トークン未提示は401、提示されたが無効な場合はinvalidStatus（既定403）。
// 無効トークンの失敗理由（期限切れ・署名不正）はレスポンスから区別できない。
func NewAuthMiddleware(verifier TokenVerifier, invalidStatus int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取り出す
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 2. 署名と有効期限を検証
			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				WriteErrorResponse(w, invalidStatus, model.NewForbiddenError())
				return
			}

			// 3. 検証済みの識別情報をコンテキストに注入
			ctx := ContextWithIdentity(r.Context(), claims.UserID, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが無い、またはBearerスキームでない場合は空文字列を返す。
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
