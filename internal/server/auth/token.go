// Package auth implements the stateless bearer-token codec and password
// hashing used by the credential services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avetisov/credkeeper/internal/common"
)

// TokenKind tags a bearer token as either a short-lived access token or a
// longer-lived refresh token.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed claim set carried by every bearer token: the
// registered jti/subject/iat/exp plus the token kind tag.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// TokenCodec signs and verifies bearer tokens with an HS256 HMAC secret.
// The secret and per-kind lifetimes are fixed at construction; the codec
// holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec constructs a codec for the given signing secret and token
// lifetimes.
func NewTokenCodec(secret []byte, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (c *TokenCodec) ttl(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (interface{}, error) {
	return c.secret, nil
}

// Issue mints a signed token for the given subject. The expiry is the
// issue time plus the lifetime configured for the kind. Every token gets
// a random jti, so two tokens minted for the same subject and kind are
// distinct even within the same second (iat has second granularity).
func (c *TokenCodec) Issue(subject string, kind TokenKind) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
		},
		Kind: kind,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ExtractSubject decodes the token and returns its subject after verifying
// structure and signature only. Expiry is deliberately not checked so the
// caller can look up the account before full validation and report expired
// tokens distinctly from malformed ones. Returns common.ErrMalformedToken
// when the token cannot be decoded or its signature does not verify.
func (c *TokenCodec) ExtractSubject(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return "", common.ErrMalformedToken
	}

	return claims.Subject, nil
}

// IsValid reports whether the token's signature verifies, its expiry has
// not passed, and its subject equals expectedSubject. Expiry is strict:
// a token presented exactly at its expiry instant is invalid. A
// well-formed token that fails any check yields false, never an error.
func (c *TokenCodec) IsValid(tokenString string, expectedSubject string) bool {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return false
	}

	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return false
	}

	return claims.Subject == expectedSubject
}
