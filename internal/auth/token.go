package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// BearerPrefix is prepended to issued tokens and stripped on verify.
	BearerPrefix = "Bearer "

	tokenIssuer   = "devlink-api"
	tokenAudience = "devlink-client"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong signing method, expired, or wrong issuer/audience.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed session payload identifying an account.
type Claims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim as the account id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// IssueToken signs a bearer token for the given identity with the given
// time-to-live. The returned string carries the "Bearer " prefix.
func IssueToken(userID uint, name, avatar, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Name:   name,
		Avatar: avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return BearerPrefix + signed, nil
}

// VerifyToken parses and validates a bearer token, with or without its
// "Bearer " prefix, and returns the decoded claims.
func VerifyToken(raw, secret string) (*Claims, error) {
	raw = strings.TrimPrefix(raw, BearerPrefix)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateJTI creates a unique token identifier.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
