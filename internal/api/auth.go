package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

const (
	identityKey = "identity"

	// RoleAdmin grants access to the administrative routes.
	RoleAdmin = "admin"
)

// Claims are the bearer token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64    `json:"uid"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	ID       int64
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries role
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// identityStore records identities the first time they are seen.
type identityStore interface {
	EnsureUser(ctx context.Context, id int64, username string) (*models.User, error)
}

// Authenticator verifies HS256 bearer tokens
type Authenticator struct {
	secret []byte
	issuer string
	users  identityStore
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(cfg *config.AuthConfig, users identityStore) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		users:  users,
	}
}

// IssueToken signs a token for the identity; used by tooling and tests.
func IssueToken(cfg *config.AuthConfig, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   fmt.Sprintf("%d", id.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   id.ID,
		Username: id.Username,
		Roles:    id.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func (a *Authenticator) parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 || claims.Username == "" {
		return nil, errors.New("token lacks uid or username")
	}
	return claims, nil
}

// Middleware attaches the caller's identity when a bearer token is present.
// Anonymous requests pass through; a bad token is rejected.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWithError(c, fmt.Errorf("malformed authorization header: %w", ErrUnauthenticated))
			return
		}
		claims, err := a.parse(raw)
		if err != nil {
			abortWithError(c, fmt.Errorf("%v: %w", err, ErrUnauthenticated))
			return
		}

		if _, err := a.users.EnsureUser(c.Request.Context(), claims.UserID, claims.Username); err != nil {
			logging.FromGin(c).Error("Failed to record identity", zap.Int64("uid", claims.UserID), zap.Error(err))
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, &Identity{ID: claims.UserID, Username: claims.Username, Roles: claims.Roles})
		c.Set(logging.UsernameKey, claims.Username)
		c.Next()
	}
}

// CurrentIdentity returns the authenticated caller, or nil for anonymous requests
func CurrentIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

func requireIdentity(c *gin.Context) (*Identity, error) {
	id := CurrentIdentity(c)
	if id == nil {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

// RequireAuth rejects anonymous requests before they reach a handler
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := requireIdentity(c); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers lacking role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := requireIdentity(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !id.HasRole(role) {
			abortWithError(c, fmt.Errorf("role %s required: %w", role, models.ErrPermissionDenied))
			return
		}
		c.Next()
	}
}

// abortWithError writes the mapped status and a JSON error body
func abortWithError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		logging.FromGin(c).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
