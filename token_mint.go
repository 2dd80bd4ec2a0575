package heritage

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Password-reset links carry a signed, short-lived JWT referencing the
// reset record. This is the only place a signed token shows up:
// sessions are opaque database rows and stay that way. A signed link
// token lets the reset email work without a stored secret per link.

const resetTokenScope = "password-reset"

// ResetClaims is the payload of a reset link token.
type ResetClaims struct {
	jwt.RegisteredClaims
	Scope   string `json:"scope"`
	ResetID string `json:"reset_id"`
}

// MintResetToken signs a one-shot link token for the given reset
// record.
func MintResetToken(signingKey string, resetID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error) {
	if signingKey == "" {
		return "", time.Time{}, goerrors.New("reset signing key is required", goerrors.CategoryBadInput)
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ttl)

	claims := &ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope:   resetTokenScope,
		ResetID: resetID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign reset token")
	}

	return signed, expiresAt, nil
}

// ParseResetToken validates a reset link token and returns the reset
// record ID it references. Any failure collapses to ErrResetInvalid.
func ParseResetToken(signingKey, raw string) (uuid.UUID, error) {
	claims := &ResetClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, goerrors.New("unexpected signing method", goerrors.CategoryAuth)
		}
		return []byte(signingKey), nil
	})

	if err != nil || !token.Valid {
		return uuid.Nil, ErrResetInvalid
	}

	if claims.Scope != resetTokenScope {
		return uuid.Nil, ErrResetInvalid
	}

	resetID, err := uuid.Parse(claims.ResetID)
	if err != nil {
		return uuid.Nil, ErrResetInvalid
	}

	return resetID, nil
}
