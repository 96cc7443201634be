package services

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"roomcast/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the refresh-record id alongside the registered claims.
// The subject is the user id in canonical uuid form.
type Claims struct {
	TokenID uuid.UUID `json:"token_id"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (domain.UserID, error) {
	return domain.ParseUserID(c.Subject)
}

// TokenCodec signs and verifies EdDSA tokens. Access and refresh tokens
// share the key pair and differ only in lifetime.
type TokenCodec struct {
	signingKey ed25519.PrivateKey
	verifyKey  ed25519.PublicKey
}

// NewTokenCodec builds a codec from base64-wrapped PEM key material, as it
// arrives from configuration.
func NewTokenCodec(privateKeyB64, publicKeyB64 string) (*TokenCodec, error) {
	privPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	pubPEM, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	priv, err := jwt.ParseEdPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pub, err := jwt.ParseEdPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	signingKey, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not ed25519")
	}
	verifyKey, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ed25519")
	}

	return &TokenCodec{signingKey: signingKey, verifyKey: verifyKey}, nil
}

// NewTokenCodecFromKeys builds a codec from raw keys.
func NewTokenCodecFromKeys(signingKey ed25519.PrivateKey, verifyKey ed25519.PublicKey) *TokenCodec {
	return &TokenCodec{signingKey: signingKey, verifyKey: verifyKey}
}

// Issue signs a token for the user with the given refresh-record id and
// lifetime.
func (c *TokenCodec) Issue(userID domain.UserID, tokenID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, and expiry of a token string.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
				return nil, ErrInvalidToken
			}
			return c.verifyKey, nil
		},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
