package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casbin/casbin"
	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// RoleAnonymous is the casbin subject for requests without a bearer token.
const RoleAnonymous = "Anonymous"

// Context keys set by Authenticate.
const (
	ContextRole    = "role"
	ContextSubject = "sub"
)

// Claims is the token payload; Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("no signing secret configured")
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	if c.Role == "" {
		return nil, errors.New("token has no role")
	}
	return c, nil
}

// Authenticate resolves the caller's role from an optional bearer token. Requests without
// a token continue as RoleAnonymous; malformed or invalid tokens are rejected.
func Authenticate(secret []byte, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(ContextRole, RoleAnonymous)
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			abort(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := ParseToken(tokenStr, secret)
		if err != nil {
			log.WithError(err).Warn("rejected bearer token")
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextRole, claims.Role)
		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// Authorize checks the caller's role against the casbin policy for the request path and method.
func Authorize(e *casbin.Enforcer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			role = RoleAnonymous
		}

		allowed, err := e.EnforceSafe(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			log.WithError(err).Error("Error enforcing authorization policy")
			abort(c, http.StatusInternalServerError, "authorization failed")
			return
		}
		if !allowed {
			log.WithFields(logrus.Fields{"role": role, "path": c.Request.URL.Path, "method": c.Request.Method}).
				Warn("Unauthorized access attempt: forbidden")
			status := http.StatusForbidden
			if role == RoleAnonymous {
				status = http.StatusUnauthorized
			}
			abort(c, status, http.StatusText(status))
			return
		}
		c.Next()
	}
}
