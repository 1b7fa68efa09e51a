package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		c.String(http.StatusOK, asString(c.Value(requestIDKey)))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if gen := w.Header().Get(requestIDHeader); gen == "" || gen != w.Body.String() {
		t.Fatalf("generated id header=%q context=%q", gen, w.Body.String())
	}

	for _, name := range []string{strings.ToLower(requestIDHeader), requestIDHeader} {
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(name, "Z-REQ-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "Z-REQ-123" || w.Body.String() != "Z-REQ-123" {
			t.Fatalf("%s: header=%q context=%q", name, got, w.Body.String())
		}
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }

func TestLogger_LevelsFollowOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/discover", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	r.POST("/discover/swipe", func(c *gin.Context) {
		_ = c.Error(errSentinel{})
		c.Status(http.StatusBadRequest)
	})

	cases := []struct {
		method, target string
		level, path    string
	}{
		{http.MethodGet, "/discover", "info", "/discover"},
		{http.MethodGet, "/nope/abc", "warn", "/nope/abc"},
		{http.MethodPost, "/discover/swipe", "error", "/discover/swipe"},
	}
	for _, tc := range cases {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.target, nil))
		var line map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
			t.Fatalf("%s %s: decode %q: %v", tc.method, tc.target, buf.String(), err)
		}
		if line["level"] != tc.level || line["path"] != tc.path {
			t.Fatalf("%s %s: level=%v path=%v", tc.method, tc.target, line["level"], line["path"])
		}
		if tc.level == "error" && line["errors"] == nil {
			t.Fatalf("gin errors should be logged: %v", line)
		}
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/panic-after-write", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" || body["request_id"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}

	// Once the handler has written, only the status is forced.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic-after-write", nil))
	if strings.Contains(strings.ToLower(w.Header().Get("Content-Type")), "application/json") {
		t.Fatalf("no JSON envelope after a partial write; body=%q", w.Body.String())
	}
}

func TestLoggerFrom_FallbackAndRequestScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	bare := gin.New()
	bare.Use(RequestID())
	bare.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("fallback")
		c.Status(http.StatusOK)
	})
	bare.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))
	if !strings.Contains(buf.String(), `"message":"fallback"`) || strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("fallback logger output: %s", buf.String())
	}

	buf.Reset()
	scoped := gin.New()
	scoped.Use(RequestID(), Logger())
	scoped.GET("/use", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("scoped")
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/use", nil)
	req.Header.Set(requestIDHeader, "rid-ctx")
	scoped.ServeHTTP(httptest.NewRecorder(), req)
	if !strings.Contains(buf.String(), `"request_id":"rid-ctx","method":"GET"`) || !strings.Contains(buf.String(), `"message":"scoped"`) {
		t.Fatalf("scoped logger output: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
	if asString(123) != "" || asString("x") != "x" {
		t.Fatalf("asString")
	}
}

func TestRequestID_RejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", 129)} {
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header[requestIDHeader] = []string{bad}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get(requestIDHeader)
		if got == bad || got == "" {
			t.Fatalf("malformed id %q should be replaced, got %q", bad, got)
		}
	}
}

func TestLogger_MatchAndReplayFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.Use(func(c *gin.Context) {
		c.Set(ctxKeyUserID, "u-7")
		c.Set(ctxKeyIdemReplay, true)
		c.Next()
	})
	r.POST("/matches/:id/messages", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/blocks/:targetId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/matches/m-1/messages", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/blocks/t-9", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 access lines, got %d:\n%s", len(lines), buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["match_id"] != "m-1" || first["user_id"] != "u-7" || first["replayed"] != true {
		t.Fatalf("unexpected fields: %v", first)
	}
	if first["path"] != "/matches/:id/messages" {
		t.Fatalf("path should be the route template: %v", first["path"])
	}
	if second["target_id"] != "t-9" || second["match_id"] != nil {
		t.Fatalf("unexpected fields: %v", second)
	}
}

func TestAbortJSON_CarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { abortJSON(c, http.StatusConflict, "conflict", "already blocked") })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestIDHeader, "rid-abort")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusConflict || body["request_id"] != "rid-abort" || body["code"] != "conflict" {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
}
