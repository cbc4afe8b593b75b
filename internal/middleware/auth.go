package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt"
)

type contextKey string

const UserContextKey contextKey = "user"

// Privileged roles; everyone else is a customer.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// User is the identity carried by a verified access token. Accounts live
// in an external identity service; this is all the API ever needs.
type User struct {
	ID    int
	Email string
	Role  string
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthMiddleware verifies bearer tokens and loads the caller's identity
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret)}
}

// RequireAuth rejects requests without a valid bearer token and puts the
// authenticated user into the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.userFromRequest(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects authenticated users that hold none of the given
// roles. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func (m *AuthMiddleware) userFromRequest(r *http.Request) (*User, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := subjectID(claims)
	if err != nil {
		return nil, err
	}

	user := &User{ID: userID}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}

	return user, nil
}

// subjectID reads the sub claim, which arrives as a JSON number or a
// numeric string depending on the issuer
func subjectID(claims jwt.MapClaims) (int, error) {
	switch sub := claims["sub"].(type) {
	case float64:
		return int(sub), nil
	case string:
		id, err := strconv.Atoi(sub)
		if err != nil {
			return 0, fmt.Errorf("invalid subject claim: %w", err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("missing subject claim")
	}
}

// GetUserFromContext returns the authenticated user, or nil outside of
// RequireAuth
func GetUserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(UserContextKey).(*User)
	return user
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
