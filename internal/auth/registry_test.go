package auth

import (
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryRegistry_RecordAndIsValid(t *testing.T) {
	r := NewInMemoryRegistry()

	if r.IsValid("token-1") {
		t.Error("expected unrecorded token to be invalid")
	}

	r.Record("token-1")

	if !r.IsValid("token-1") {
		t.Error("expected recorded token to be valid")
	}
	if r.IsValid("token-2") {
		t.Error("expected different token to be invalid")
	}
}

func TestInMemoryRegistry_Revoke(t *testing.T) {
	r := NewInMemoryRegistry()

	r.Record("token-1")
	r.Revoke("token-1")

	if r.IsValid("token-1") {
		t.Error("expected revoked token to be invalid")
	}
}

func TestInMemoryRegistry_RevokeUnknown_NoPanic(t *testing.T) {
	r := NewInMemoryRegistry()

	// 登録されていないトークンのRevokeは何もしない
	r.Revoke("unknown-token")

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestInMemoryRegistry_Len(t *testing.T) {
	r := NewInMemoryRegistry()

	r.Record("token-1")
	r.Record("token-2")
	r.Record("token-1") // 重複登録は集合として1つ

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

// TestInMemoryRegistry_ConcurrentAccess は並行するログイン（Record）と
// リフレッシュ（IsValid）とログアウト（Revoke）が安全に動作することを検証する。
// go test -race で実行することを想定している。
func TestInMemoryRegistry_ConcurrentAccess(t *testing.T) {
	r := NewInMemoryRegistry()

	const goroutines = 32
	const iterations = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				tok := fmt.Sprintf("token-%d-%d", n, j)
				r.Record(tok)
				if !r.IsValid(tok) {
					t.Errorf("token %s should be valid after Record", tok)
				}
				r.Revoke(tok)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after all revocations", r.Len())
	}
}
