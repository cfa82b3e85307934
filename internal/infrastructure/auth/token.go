// Package auth issues and validates the HS256 session tokens used by the
// chat and admin surfaces.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mediclic/vademecum-ai/internal/config"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// Claims are the registered claims plus the user role carried by every
// token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is an access token and its longer-lived refresh companion.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
}

// TokenIssuer signs and parses session tokens.
type TokenIssuer struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenIssuer constructs a TokenIssuer from configuration.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:        []byte(cfg.Secret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

// Issue signs a token pair for the given user.
func (i *TokenIssuer) Issue(userID, role string) (TokenPair, error) {
	now := time.Now()

	access, err := i.sign(userID, role, now, i.accessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(userID, role, now, i.refreshExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.accessExpiry.Seconds()),
	}, nil
}

func (i *TokenIssuer) sign(userID, role string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign token")
	}
	return token, nil
}

// Parse validates a token and returns its claims. Expired, malformed or
// foreign-signed tokens yield ErrCodeUnauthorized.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Newf(apperrors.ErrCodeUnauthorized, "unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid token")
	}
	if !token.Valid {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "invalid token")
	}
	return claims, nil
}
