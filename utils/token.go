package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cppla/microblog/config"
)

// Token purposes. A token issued for one purpose never verifies under another.
const (
	PurposeConfirm       = "confirm"
	PurposePasswordReset = "password-reset"
	PurposeEmailChange   = "email-change"
)

// ErrInvalidToken is returned for any unusable purpose token: bad signature,
// malformed input, wrong purpose, or expiry. Callers report all of these as
// "invalid or expired".
var ErrInvalidToken = errors.New("invalid or expired token")

// PurposeClaims carries a purpose tag, the subject user and optional extra
// payload inside a signed, time-limited token.
type PurposeClaims struct {
	Purpose  string `json:"purpose"`
	UserID   uint   `json:"user_id"`
	NewEmail string `json:"new_email,omitempty"`
	jwt.RegisteredClaims
}

// IssuePurposeToken serializes the payload into an HS256 token expiring after
// ttl. The jti keeps otherwise identical payloads issued within the same
// second distinct.
func IssuePurposeToken(purpose string, userID uint, newEmail string, ttl time.Duration) (string, error) {
	cfg := config.Get()
	now := time.Now()

	claims := PurposeClaims{
		Purpose:  purpose,
		UserID:   userID,
		NewEmail: newEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SecretKey))
}

// VerifyPurposeToken validates signature, expiry and purpose, returning the
// original payload. It is stateless and side-effect free.
func VerifyPurposeToken(tokenStr, purpose string) (*PurposeClaims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &PurposeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*PurposeClaims)
	if !ok || !parsed.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
