// Package token はJWTアクセストークン・リフレッシュトークンの発行と検証を提供する。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/model"
)

// ErrInvalidToken はトークン検証失敗を表す。
// 期限切れ・署名不正・形式不正をすべてこのエラーに収斂させる。
// 失敗理由を区別して返すと、攻撃者へのオラクルになるため。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに埋め込む利用者情報。
// 標準クレームに加えて発行時点のユーザーIDとユーザー名を持つ。
// ユーザーレコードが後から変更されてもクレームは書き換えない。
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Issuer はアクセストークンとリフレッシュトークンの発行・検証を行う。
// 2種類のトークンは別々のシークレットで署名する。
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer はIssuerを生成する。
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken は短命のアクセストークンを発行する。
func (i *Issuer) IssueAccessToken(user *model.User) (string, error) {
	return sign(user, i.accessSecret, i.accessTTL)
}

// IssueRefreshToken は長命のリフレッシュトークンを発行する。
// アクセストークンとは別のシークレットで署名する。
func (i *Issuer) IssueRefreshToken(user *model.User) (string, error) {
	return sign(user, i.refreshSecret, i.refreshTTL)
}

// VerifyAccessToken はアクセストークンの署名と有効期限を検証する。
// 検証に失敗した場合は理由を問わずErrInvalidTokenを返す。
func (i *Issuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefreshToken はリフレッシュトークンの署名と有効期限を検証する。
// 検証に失敗した場合は理由を問わずErrInvalidTokenを返す。
func (i *Issuer) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return verify(tokenString, i.refreshSecret)
}

// sign はHS256で署名したトークン文字列を生成する。
// jtiにはUUIDを設定し、同一ユーザー・同一時刻の発行でも一意になるようにする。
func sign(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
	})

	return token.SignedString(secret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
