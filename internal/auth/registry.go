package auth

import "sync"

// TokenRegistry は交換可能なリフレッシュトークンの集合を管理するインターフェース。
// 署名が正しいだけではリフレッシュ交換は許可されず、この集合への所属も必要になる。
type TokenRegistry interface {
	// Record はリフレッシュトークンを有効な集合に追加する。
	// ログイン成功時に発行直後のトークンに対して1回呼ばれる。
	Record(token string)

	// IsValid はトークンが現在有効な集合に含まれるかを返す。
	IsValid(token string) bool

	// Revoke はトークンを集合から取り除く。ログアウト時に使用する。
	Revoke(token string)
}

// InMemoryRegistry はプロセスメモリ上のリフレッシュトークン登録簿。
//
// 寿命はプロセスと同じであり、再起動すると発行済みの全リフレッシュトークンが
// 無効になる。これは参照実装から引き継いだ既知の制限で、永続性が必要な場合は
// TokenRegistryの別実装を注入する。
//
// ログイン（追加）とリフレッシュ（参照）が並行に走るためRWMutexで保護する。
type InMemoryRegistry struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewInMemoryRegistry はInMemoryRegistryを生成する。
// アプリケーション起動時に1回だけ構築し、Session Flowsに参照で渡す。
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		tokens: make(map[string]struct{}),
	}
}

// Record はリフレッシュトークンを有効な集合に追加する。
func (r *InMemoryRegistry) Record(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = struct{}{}
}

// IsValid はトークンが現在有効な集合に含まれるかを返す。
func (r *InMemoryRegistry) IsValid(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tokens[token]
	return ok
}

// Revoke はトークンを集合から取り除く。
// 存在しないトークンに対しては何もしない。
func (r *InMemoryRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}

// Len は現在登録されているトークン数を返す。
// テストおよびメトリクス用。
func (r *InMemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// compile-time interface check
var _ TokenRegistry = (*InMemoryRegistry)(nil)
