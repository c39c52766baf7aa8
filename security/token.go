package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identify a user for the SSE stream. ImpersonatedBy is set on tokens minted by
// start_impersonation and carries the admin's id.
type Claims struct {
	UserID         string   `json:"user_id"`
	Roles          []string `json:"roles,omitempty"`
	ImpersonatedBy string   `json:"imp,omitempty"`
	SessionID      string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a user token valid for ttl.
func GenerateJWT(userID string, roles []string, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return signed, expiresAt, err
}

// GenerateImpersonationJWT mints a token that acts as targetUserID until expiresAt.
func GenerateImpersonationJWT(sessionID, adminID, targetUserID, secret string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID:         targetUserID,
		ImpersonatedBy: adminID,
		SessionID:      sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   targetUserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateJWT validates and parses a JWT token
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == "" {
			return nil, fmt.Errorf("token has no user")
		}
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// TokenIssuer binds the signing secret so callers don't carry it around.
type TokenIssuer struct {
	Secret string
}

// IssueStream mints a short-lived SSE token for a gateway-authenticated user.
func (t TokenIssuer) IssueStream(userID string, roles []string, ttl time.Duration) (string, time.Time, error) {
	return GenerateJWT(userID, roles, t.Secret, ttl)
}

func (t TokenIssuer) IssueImpersonation(sessionID, adminID, targetUserID string, expiresAt time.Time) (string, error) {
	return GenerateImpersonationJWT(sessionID, adminID, targetUserID, t.Secret, expiresAt)
}
