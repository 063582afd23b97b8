package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWith(mw gin.HandlerFunc, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/items", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000", "http://ops.example.com"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", "/items", map[string]string{"Origin": "http://ops.example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unlisted origin gets no CORS headers", func(t *testing.T) {
		cfg := CORSConfig{AllowOrigins: []string{"http://allowed.example.com"}}

		w := serveWith(CORSWithConfig(cfg), "GET", "/items", map[string]string{"Origin": "http://other.example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects every cross-origin request", func(t *testing.T) {
		w := serveWith(CORS(), "GET", "/items", map[string]string{"Origin": "http://anywhere.example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET"},
			AllowCredentials: true,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", "/items", map[string]string{"Origin": "http://anywhere.example.com"})

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answered with 204", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		}

		w := serveWith(CORSWithConfig(cfg), "OPTIONS", "/items", map[string]string{"Origin": "http://localhost:3000"})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight from unlisted origin still 204 but bare", func(t *testing.T) {
		cfg := CORSConfig{AllowOrigins: []string{"http://allowed.example.com"}}

		w := serveWith(CORSWithConfig(cfg), "OPTIONS", "/items", map[string]string{"Origin": "http://other.example.com"})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "DELETE")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.ExposeHeaders, "X-Request-ID")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/items", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id when none supplied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		router.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get("X-Request-ID"), 32)
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("echoes a caller-supplied id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("X-Request-ID", "req-from-gateway")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-from-gateway", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-from-gateway", w.Body.String())
	})

	t.Run("ids are unique", func(t *testing.T) {
		assert.NotEqual(t, newRequestID(), newRequestID())
	})
}

func TestSecure(t *testing.T) {
	w := serveWith(Secure(), "GET", "/items", nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("HSTS with all flags", func(t *testing.T) {
		cfg := SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "/items", nil)

		assert.Equal(t, "max-age=63072000; includeSubDomains; preload",
			w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS max-age only", func(t *testing.T) {
		cfg := SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 31536000}

		w := serveWith(SecureWithConfig(cfg), "GET", "/items", nil)

		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("custom CSP and Permissions-Policy", func(t *testing.T) {
		cfg := SecurityConfig{
			CSPEnabled:                 true,
			CSPDirective:               "default-src 'none'; script-src 'self'",
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self)",
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "/items", nil)

		assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "geolocation=(self)", w.Header().Get("Permissions-Policy"))
	})

	t.Run("optional headers disabled leaves base set intact", func(t *testing.T) {
		w := serveWith(SecureWithConfig(SecurityConfig{}), "GET", "/items", nil)

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})
}
