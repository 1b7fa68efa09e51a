package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// memStore is an in-memory IdempotencyStore.
type memStore struct {
	mu      sync.Mutex
	entries map[string]StoredResponse
	lookups int
	saves   int
}

func newMemStore() *memStore { return &memStore{entries: map[string]StoredResponse{}} }

func (m *memStore) Lookup(_ context.Context, userID, scope, key string, now time.Time) (*StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if now.IsZero() {
		return nil, nil
	}
	if e, ok := m.entries[userID+"|"+scope+"|"+key]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *memStore) Save(_ context.Context, userID, scope, key string, status int, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.entries[userID+"|"+scope+"|"+key] = StoredResponse{Status: status, Body: append([]byte(nil), body...)}
	return nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}

func TestIdempotencyHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	if k, ok := GetIdempotencyKey(c); ok || k != "" {
		t.Fatalf("expected no key, got %q ok=%v", k, ok)
	}
	c.Set(ctxKeyIdemKey, "abc")
	if k, ok := GetIdempotencyKey(c); !ok || k != "abc" {
		t.Fatalf("GetIdempotencyKey mismatch: %q ok=%v", k, ok)
	}
	if IsReplay(c) {
		t.Fatalf("IsReplay should default to false")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("IsReplay should be true")
	}

	if got := userIDFromCtx(c); got != "" {
		t.Fatalf("userIDFromCtx without auth: %q", got)
	}
	c.Set(ctxKeyUserID, "u1")
	if got := userIDFromCtx(c); got != "u1" {
		t.Fatalf("userIDFromCtx mismatch: %q", got)
	}
}

func TestIdempotency_NoHeaderOrSafeMethod_PassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, store))
	r.POST("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if store.lookups != 0 || store.saves != 0 {
		t.Fatalf("store must not be touched: lookups=%d saves=%d", store.lookups, store.saves)
	}
}

func TestIdempotency_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 8}, nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, key := range []string{"has space", "waytoolongkey", "bad/char"} {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status=%d", key, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"code":"bad_request"`) {
			t.Fatalf("key %q: body=%s", key, w.Body.String())
		}
	}
}

func TestIdempotency_StoresThenReplays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	calls := 0

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyUserID, "u9"); c.Next() })
	r.Use(IdempotencyValidator(IdempotencyOptions{}, store))
	r.POST("/matches/:id/messages", func(c *gin.Context) {
		calls++
		if _, ok := GetIdempotencyKey(c); !ok {
			t.Fatalf("key should be stashed")
		}
		c.JSON(http.StatusCreated, gin.H{"id": "msg-1", "call": calls})
	})

	send := func(matchID, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/messages", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send("m1", "k-1")
	if first.Code != http.StatusCreated || first.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatalf("first: status=%d replayed=%q", first.Code, first.Header().Get(HeaderIdempotencyReplayed))
	}

	second := send("m1", "k-1")
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status=%d", second.Code)
	}
	if second.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay header missing")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %s vs %s", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}

	// Same key on another match is a different scope.
	if third := send("m2", "k-1"); third.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatalf("different scope must not replay")
	}
	if calls != 2 {
		t.Fatalf("handler ran %d times", calls)
	}

	keys := store.keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 stored entries, got %v", keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "u9|/matches/:id/messages#m") {
			t.Fatalf("unexpected store key %q", k)
		}
	}
}

func TestIdempotency_ErrorsAreNotStored(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, store))
	r.POST("/discover/swipe", func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "quota_exceeded"})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/discover/swipe", nil)
		req.Header.Set(HeaderIdempotencyKey, "k")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests || w.Header().Get(HeaderIdempotencyReplayed) != "" {
			t.Fatalf("attempt %d: status=%d", i, w.Code)
		}
	}
	if store.saves != 0 {
		t.Fatalf("error responses must not be stored")
	}
}

func TestIdempotency_ReplayBypassesRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	rl := NewRateLimiter(0.0001, 1, KeyByUserOrIP())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyUserID, "u1"); c.Next() })
	r.Use(IdempotencyValidator(IdempotencyOptions{}, store))
	r.Use(rl.Handler())
	r.POST("/discover/swipe", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"matched": false}) })

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/discover/swipe", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("a"); w.Code != http.StatusOK {
		t.Fatalf("first: %d", w.Code)
	}
	if w := do("b"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("new key should be limited, got %d", w.Code)
	}
	if w := do("a"); w.Code != http.StatusOK || w.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay should bypass limiter, got %d", w.Code)
	}
}
