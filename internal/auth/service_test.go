package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/token"
)

// --- モック ---

type mockUserRepo struct {
	createFn         func(ctx context.Context, username, passwordHash string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	findByIDFn       func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &model.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// --- テスト用ヘルパー ---

// testIssuer は実際のtoken.Issuerをテスト用の短いTTLで生成する。
func testIssuer() *token.Issuer {
	return token.NewIssuer("access-secret", "refresh-secret", 2*time.Minute, time.Hour)
}

func newTestService(t *testing.T, userRepo *mockUserRepo) (*Service, *InMemoryRegistry) {
	t.Helper()
	registry := NewInMemoryRegistry()
	// テストではbcrypt.MinCostを使い実行時間を抑える
	svc, err := NewService(userRepo, testIssuer(), registry, nil, ServiceConfig{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, registry
}

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcryptハッシュ生成に失敗: %v", err)
	}
	return string(h)
}

// --- Register ---

func TestService_Register_HashesPassword(t *testing.T) {
	var storedHash string
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*model.User, error) {
			storedHash = passwordHash
			return &model.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	user, err := svc.Register(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
	if storedHash == "Secret123" {
		t.Error("password must not be stored in plaintext")
	}
	// 保存されたハッシュから元パスワードが検証できること
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("Secret123")); err != nil {
		t.Errorf("stored hash does not verify original password: %v", err)
	}
}

func TestService_Register_EmptyInput_ReturnsInvalidRequest(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username空", "", "Secret123"},
		{"password空", "alice", ""},
		{"両方空", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
				t.Errorf("expected INVALID_REQUEST error, got %v", err)
			}
		})
	}
}

func TestService_Register_DuplicateUsername_PropagatesError(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*model.User, error) {
			return nil, model.ErrDuplicateUsername
		},
	}
	svc, _ := newTestService(t, userRepo)

	_, err := svc.Register(context.Background(), "alice", "Secret123")
	if !errors.Is(err, model.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername in chain, got %v", err)
	}
}

// --- Login ---

func TestService_Login_Success_ReturnsTokenPairAndRecordsRefresh(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc, registry := newTestService(t, userRepo)

	pair, err := svc.Login(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must be distinct")
	}
	if !registry.IsValid(pair.RefreshToken) {
		t.Error("refresh token should be recorded in registry after login")
	}
}

func TestService_Login_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	_, err := svc.Login(context.Background(), "alice", "WrongPassword")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

// TestService_Login_UnknownUser_IndistinguishableFromWrongPassword は
// ユーザー名不明とパスワード不一致で同一形のエラーが返ることを検証する。
// ユーザー名の列挙攻撃を防ぐための要件。
func TestService_Login_UnknownUser_IndistinguishableFromWrongPassword(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	_, errUnknown := svc.Login(context.Background(), "nobody", "Secret123")
	_, errWrongPw := svc.Login(context.Background(), "alice", "WrongPassword")

	var apiErrUnknown, apiErrWrongPw *model.APIError
	if !errors.As(errUnknown, &apiErrUnknown) {
		t.Fatalf("expected APIError for unknown user, got %v", errUnknown)
	}
	if !errors.As(errWrongPw, &apiErrWrongPw) {
		t.Fatalf("expected APIError for wrong password, got %v", errWrongPw)
	}

	if *apiErrUnknown != *apiErrWrongPw {
		t.Errorf("error shapes differ: unknown=%+v wrongPw=%+v", apiErrUnknown, apiErrWrongPw)
	}
}

// --- Refresh ---

func TestService_Refresh_ValidToken_ReturnsNewAccessToken(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	pair, err := svc.Login(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	accessToken, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if accessToken == "" {
		t.Fatal("expected non-empty access token")
	}

	// 新しいアクセストークンは元のクレームを引き継ぐ
	claims, err := testIssuer().VerifyAccessToken(accessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = {%d %q}, want {42 \"alice\"}", claims.UserID, claims.Username)
	}
}

// TestService_Refresh_UnrecordedToken_Rejected は署名が正しく未期限でも
// レジストリに登録されていないリフレッシュトークンが拒否されることを検証する。
// 署名とレジストリ所属の二要素が揃わない限り交換できない。
func TestService_Refresh_UnrecordedToken_Rejected(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	// レジストリを経由せず直接発行した、暗号的には正当なトークン
	wellFormed, err := testIssuer().IssueRefreshToken(&model.User{ID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	_, err = svc.Refresh(context.Background(), wellFormed)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestService_Refresh_EmptyToken_Rejected(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	_, err := svc.Refresh(context.Background(), "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

func TestService_Refresh_RecordedButGarbageToken_Rejected(t *testing.T) {
	svc, registry := newTestService(t, &mockUserRepo{})

	// レジストリには存在するが署名検証に通らないトークン
	registry.Record("garbage-token")

	_, err := svc.Refresh(context.Background(), "garbage-token")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
}

// TestService_Refresh_NoRotation はリフレッシュ後も同じリフレッシュトークンが
// 引き続き有効であることを検証する（参照実装はローテーションしない）。
func TestService_Refresh_NoRotation(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc, registry := newTestService(t, userRepo)

	pair, err := svc.Login(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("1回目のRefreshに失敗: %v", err)
	}

	if !registry.IsValid(pair.RefreshToken) {
		t.Error("refresh token should remain valid after use")
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Errorf("2回目のRefreshに失敗: %v", err)
	}
}

// --- Logout ---

func TestService_Logout_RevokesRefreshToken(t *testing.T) {
	hash := hashForTest(t, "Secret123")
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice", PasswordHash: hash}, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	pair, err := svc.Login(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	svc.Logout(context.Background(), pair.RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN after logout, got %v", err)
	}
}

// --- CurrentUser ---

func TestService_CurrentUser_Found(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	user, err := svc.CurrentUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("user.ID = %d, want 42", user.ID)
	}
}

func TestService_CurrentUser_NotFound(t *testing.T) {
	svc, _ := newTestService(t, &mockUserRepo{})

	_, err := svc.CurrentUser(context.Background(), 999)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// TestService_RegisterThenLogin は登録と同じ認証情報でログインでき、
// 2つの異なる非空トークンが返ることを検証する。
func TestService_RegisterThenLogin(t *testing.T) {
	// ステートフルモック: Createで保存したユーザーをFindByUsernameで返す
	users := map[string]*model.User{}
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*model.User, error) {
			if _, ok := users[username]; ok {
				return nil, model.ErrDuplicateUsername
			}
			u := &model.User{ID: int64(len(users) + 1), Username: username, PasswordHash: passwordHash}
			users[username] = u
			return u, nil
		},
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return users[username], nil
		},
	}
	svc, _ := newTestService(t, userRepo)

	if _, err := svc.Register(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	pair, err := svc.Login(context.Background(), "alice", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Errorf("expected two distinct non-empty tokens, got %+v", pair)
	}
}
