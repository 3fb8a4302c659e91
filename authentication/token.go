package authentication

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	accessLifetime  = 24 * time.Hour
	refreshLifetime = 7 * 24 * time.Hour
)

// Claims carries the authenticated user's identity and role in every token.
// The uuid jti (RegisteredClaims.ID) keys the logout denylist.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

func jwtKey() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("secretKey")
}

func generateToken(userID uint, role, tokenType string, lifetime time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// GenerateTokenPair issues an access and a refresh token for the user.
func GenerateTokenPair(userID uint, role string) (access string, refresh string, err error) {
	access, err = generateToken(userID, role, TokenTypeAccess, accessLifetime)
	if err != nil {
		return "", "", err
	}
	refresh, err = generateToken(userID, role, TokenTypeRefresh, refreshLifetime)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// GenerateAccessToken issues a fresh access token, used by the refresh flow.
func GenerateAccessToken(userID uint, role string) (string, error) {
	return generateToken(userID, role, TokenTypeAccess, accessLifetime)
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
