package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casbin/casbin"
	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, role string, key []byte, method jwt.SigningMethod, ttl time.Duration) string {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestParseToken(t *testing.T) {
	testCases := []struct {
		name        string
		token       func(t *testing.T) string
		secret      []byte
		expectError bool
	}{
		{name: "valid", token: func(t *testing.T) string { return sign(t, "Admin", secret, jwt.SigningMethodHS256, time.Hour) }, secret: secret},
		{name: "expired", token: func(t *testing.T) string { return sign(t, "Admin", secret, jwt.SigningMethodHS256, -time.Hour) }, secret: secret, expectError: true},
		{name: "wrong key", token: func(t *testing.T) string { return sign(t, "Admin", []byte("other"), jwt.SigningMethodHS256, time.Hour) }, secret: secret, expectError: true},
		{name: "wrong alg", token: func(t *testing.T) string { return sign(t, "Admin", secret, jwt.SigningMethodHS512, time.Hour) }, secret: secret, expectError: true},
		{name: "no role", token: func(t *testing.T) string { return sign(t, "", secret, jwt.SigningMethodHS256, time.Hour) }, secret: secret, expectError: true},
		{name: "no secret", token: func(t *testing.T) string { return sign(t, "Admin", secret, jwt.SigningMethodHS256, time.Hour) }, secret: nil, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := ParseToken(tc.token(t), tc.secret)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Admin", claims.Role)
			assert.Equal(t, "42", claims.Subject)
		})
	}
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	e, err := casbin.NewEnforcerSafe("../../config/rbac_model.conf", "../../config/policy.csv")
	require.NoError(t, err)
	e.EnableLog(false)

	log, _ := logtest.NewNullLogger()
	r := gin.New()
	api := r.Group("/api", Authenticate(secret, log), Authorize(e, log))
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextSubject)) }
	api.GET("/rooms", ok)
	api.GET("/rooms/:id", ok)
	api.DELETE("/rooms/:id", ok)
	api.POST("/bookings", ok)
	api.GET("/payments", ok)

	admin := "Bearer " + sign(t, "Admin", secret, jwt.SigningMethodHS256, time.Hour)
	user := "Bearer " + sign(t, "User", secret, jwt.SigningMethodHS256, time.Hour)

	testCases := []struct {
		name   string
		method string
		target string
		token  string
		status int
	}{
		{name: "anonymous", method: http.MethodGet, target: "/api/rooms", status: http.StatusUnauthorized},
		{name: "malformed header", method: http.MethodGet, target: "/api/rooms", token: "Token abc", status: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, target: "/api/rooms", token: "Bearer abc", status: http.StatusUnauthorized},
		{name: "user lists rooms", method: http.MethodGet, target: "/api/rooms", token: user, status: http.StatusOK},
		{name: "user gets room", method: http.MethodGet, target: "/api/rooms/1", token: user, status: http.StatusOK},
		{name: "user deletes room", method: http.MethodDelete, target: "/api/rooms/1", token: user, status: http.StatusForbidden},
		{name: "user books", method: http.MethodPost, target: "/api/bookings", token: user, status: http.StatusOK},
		{name: "user lists payments", method: http.MethodGet, target: "/api/payments", token: user, status: http.StatusForbidden},
		{name: "admin deletes room", method: http.MethodDelete, target: "/api/rooms/1", token: admin, status: http.StatusOK},
		{name: "admin lists payments", method: http.MethodGet, target: "/api/payments", token: admin, status: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.method, tc.target, tc.token)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"succeeded":false`)
			} else {
				assert.Equal(t, "42", w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2, "X-Real-IP"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2"), "buckets are per client")
}

func TestRateLimiter_IgnoresHeaderWhenUnset(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 1, ""))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(forged string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:5000"
		req.Header.Set("X-Real-IP", forged)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.2"), "a rotated header is the same client")
}

func TestIPRateLimiter_ReusesLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
	assert.NotSame(t, l.GetLimiter("a"), l.GetLimiter("b"))
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	hits := 0

	r := gin.New()
	rooms := r.Group("/api/rooms", rc.Handler(), rc.Invalidate("/api/rooms"))
	rooms.GET("", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "list")
	})
	rooms.GET("/:id", func(c *gin.Context) {
		hits++
		if c.Param("id") == "404" {
			c.String(http.StatusBadRequest, "missing")
			return
		}
		c.String(http.StatusOK, "room")
	})
	rooms.POST("", func(c *gin.Context) { c.String(http.StatusOK, "created") })
	rooms.PUT("/:id", func(c *gin.Context) { c.String(http.StatusBadRequest, "rejected") })

	w := do(r, http.MethodGet, "/api/rooms?pageNumber=1", "")
	assert.Equal(t, "list", w.Body.String())
	w = do(r, http.MethodGet, "/api/rooms?pageNumber=1", "")
	assert.Equal(t, "list", w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)

	do(r, http.MethodGet, "/api/rooms/404", "")
	do(r, http.MethodGet, "/api/rooms/404", "")
	assert.Equal(t, 3, hits, "failures are not cached")

	do(r, http.MethodPut, "/api/rooms/1", "")
	do(r, http.MethodGet, "/api/rooms?pageNumber=1", "")
	assert.Equal(t, 3, hits, "a failed mutation keeps the cache")

	do(r, http.MethodPost, "/api/rooms", "")
	w = do(r, http.MethodGet, "/api/rooms?pageNumber=1", "")
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 4, hits, "a successful mutation purges the resource")
}

func TestResponseCache_SkipsResponsesOverlappingAPurge(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	hits := 0

	r := gin.New()
	rooms := r.Group("/api/rooms", rc.Handler())
	rooms.GET("", func(c *gin.Context) {
		hits++
		if hits == 1 {
			// A mutation commits while this listing is being rendered.
			rc.Purge("/api/rooms")
		}
		c.String(http.StatusOK, "list")
	})

	do(r, http.MethodGet, "/api/rooms", "")
	w := do(r, http.MethodGet, "/api/rooms", "")
	assert.Empty(t, w.Header().Get("X-Cache"), "the overlapping response was not cached")
	assert.Equal(t, 2, hits)

	w = do(r, http.MethodGet, "/api/rooms", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}
