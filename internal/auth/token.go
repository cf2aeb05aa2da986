// ABOUTME: Bearer credential verification for the access gate.
// ABOUTME: Static token comparison or HS256 JWT with configurable secret.

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenVerifier defines the interface for bearer credential verification.
// Verify returns the authenticated subject (may be empty for schemes
// without identity) or an error when the credential is rejected.
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// StaticVerifier implements TokenVerifier by comparing the presented
// credential with a single expected secret.
type StaticVerifier struct {
	expected []byte
}

// NewStaticVerifier creates a verifier for the given expected token.
func NewStaticVerifier(expected string) *StaticVerifier {
	return &StaticVerifier{expected: []byte(expected)}
}

// Verify compares the presented token with the expected secret in
// constant time. The subject is always empty for static tokens.
func (v *StaticVerifier) Verify(tokenString string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(tokenString), v.expected) != 1 {
		return "", ErrInvalidToken
	}
	return "", nil
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token signature and expiry, returning the "sub"
// claim as the subject when present.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	return sub, nil
}

// Generate creates a new JWT for the given subject with expiration.
func (v *JWTVerifier) Generate(subject string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
