package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Codec issues and validates bearer tokens. Tokens are stateless: the
// subject and expiry are carried in the signed payload and no
// server-side record is kept besides the optional revocation list.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec signing with the given secret. Tokens
// expire ttl after issuance.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// TTL reports the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue creates a signed token for the given user ID.
func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Validate parses and validates a token string. Any failure (malformed
// input, bad signature, expiry) comes back as an auth error with a
// generic client message.
func (c *Codec) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Auth("Invalid or expired token")
	}
	if !token.Valid {
		return nil, apperr.Auth("Invalid or expired token")
	}
	return claims, nil
}

// Refresh validates tokenStr and issues a new token for the same
// subject with a later expiry. An expired token cannot be refreshed;
// the client must authenticate again.
func (c *Codec) Refresh(tokenStr string) (string, error) {
	claims, err := c.Validate(tokenStr)
	if err != nil {
		return "", err
	}
	return c.Issue(claims.UserID)
}
