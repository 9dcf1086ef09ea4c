package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes
const (
	PurposeUpload   = "upload"
	PurposeDownload = "download"
)

// ErrInvalidToken is returned for malformed, expired or mismatched storage tokens
var ErrInvalidToken = errors.New("invalid storage token")

type objectClaims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens granting access to a single object key
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(key, purpose string, expiresAt time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("storage signing secret is not configured")
	}
	claims := objectClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign storage token: %w", err)
	}
	return signed, nil
}

// Verify returns the object key the token grants access to
func (s *Signer) Verify(token, purpose string) (string, error) {
	claims := &objectClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
