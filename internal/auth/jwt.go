package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoExpiry     = errors.New("token has no exp claim")
)

// VisitorClaims identifies an anonymous or signed-in storefront visitor.
type VisitorClaims struct {
	VisitorID string `json:"vid"`
	jwt.RegisteredClaims
}

// VisitorTokens signs and validates the visitor cookie.
type VisitorTokens struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewVisitorTokens(secretKey string, ttl time.Duration) *VisitorTokens {
	return &VisitorTokens{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (s *VisitorTokens) WithClock(now func() time.Time) *VisitorTokens {
	s.now = now
	return s
}

// Issue signs a token for visitorID and returns it with its expiry.
func (s *VisitorTokens) Issue(visitorID string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := VisitorClaims{
		VisitorID: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   visitorID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks the signature and expiry and returns the visitor ID.
func (s *VisitorTokens) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VisitorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*VisitorClaims)
	if !ok || !token.Valid || claims.VisitorID == "" {
		return "", ErrInvalidToken
	}

	return claims.VisitorID, nil
}

func (s *VisitorTokens) TTL() time.Duration {
	return s.ttl
}

// TokenExpiry reads the exp claim of a backend-issued token without verifying
// its signature. The backend remains responsible for verification.
func TokenExpiry(tokenString string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
