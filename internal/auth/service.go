// Package auth はユーザー登録・ログイン・トークンリフレッシュのセッションフローを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/token"
)

// TokenPair はログイン成功時に返すアクセス・リフレッシュトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer はセッションフローが必要とするトークン操作のインターフェース。
// token.Issuerの部分集合として定義する。
type TokenIssuer interface {
	IssueAccessToken(user *model.User) (string, error)
	IssueRefreshToken(user *model.User) (string, error)
	VerifyRefreshToken(tokenString string) (*token.Claims, error)
}

// Metrics は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type Metrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordTokenIssued(tokenType string)
	RecordTokenRefresh()
}

// nopMetrics はメトリクス未設定時のダミー実装。
type nopMetrics struct{}

func (nopMetrics) RecordLoginSuccess()      {}
func (nopMetrics) RecordLoginFailure()      {}
func (nopMetrics) RecordTokenIssued(string) {}
func (nopMetrics) RecordTokenRefresh()      {}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // bcryptのコストファクタ（参照実装は10）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	issuer   TokenIssuer
	registry TokenRegistry
	metrics  Metrics
	config   ServiceConfig

	// dummyHash はユーザー名が存在しない場合の比較対象。
	// 存在するユーザーと存在しないユーザーでbcrypt比較の所要時間を揃え、
	// タイミング差からユーザー名の存在を推測されないようにする。
	dummyHash []byte
}

// NewService はServiceを生成する。
// metricsがnilの場合は何も記録しない。
func NewService(
	userRepo repository.UserRepository,
	issuer TokenIssuer,
	registry TokenRegistry,
	metrics Metrics,
	config ServiceConfig,
) (*Service, error) {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("daybook-dummy-password"), config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &Service{
		userRepo:  userRepo,
		issuer:    issuer,
		registry:  registry,
		metrics:   metrics,
		config:    config,
		dummyHash: dummyHash,
	}, nil
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存し、平文は保持もログ出力もしない。
// usernameの重複はDBのUNIQUE制約で検出される。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.NewInvalidRequestError("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login は認証情報を検証し、アクセス・リフレッシュトークンの組を発行する。
// ユーザー名不明とパスワード不一致はどちらも同じInvalidCredentialsになる。
// 発行したリフレッシュトークンはレジストリに記録する。
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// ユーザーが存在しなくてもbcrypt比較を実行して所要時間を揃える
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.metrics.RecordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.registry.Record(refreshToken)

	s.metrics.RecordLoginSuccess()
	s.metrics.RecordTokenIssued("access")
	s.metrics.RecordTokenIssued("refresh")

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh はリフレッシュトークンを新しいアクセストークンに交換する。
// 交換には (a) レジストリへの登録 と (b) 署名・有効期限の正当性 の両方が必要。
// リフレッシュトークン自体はローテーションされず、期限切れか明示的な
// 失効まで有効なまま残る（参照実装の設計を踏襲）。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" || !s.registry.IsValid(refreshToken) {
		return "", model.NewForbiddenError()
	}

	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", model.NewForbiddenError()
	}

	// クレームは発行時点の情報を使う。ユーザーレコードの再読込はしない。
	user := &model.User{ID: claims.UserID, Username: claims.Username}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	s.metrics.RecordTokenRefresh()
	s.metrics.RecordTokenIssued("access")

	slog.Info("access token refreshed",
		slog.Int64("user_id", claims.UserID),
	)

	return accessToken, nil
}

// Logout はリフレッシュトークンをレジストリから失効させる。
// アクセストークンはステートレスなため期限切れまで有効なまま残る。
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	s.registry.Revoke(refreshToken)
}

// CurrentUser は認証済みユーザーIDからユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
