package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVisitorTokens() *VisitorTokens {
	return NewVisitorTokens("test-secret-key-for-testing-purposes", 7*24*time.Hour)
}

func TestNewVisitorTokens(t *testing.T) {
	service := newTestVisitorTokens()
	assert.NotNil(t, service)
	assert.Equal(t, 7*24*time.Hour, service.TTL())
}

func TestVisitorTokens_Issue_Success(t *testing.T) {
	service := newTestVisitorTokens()

	token, expiresAt, err := service.Issue("visitor-123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))
}

func TestVisitorTokens_Validate_Valid(t *testing.T) {
	service := newTestVisitorTokens()

	token, _, err := service.Issue("visitor-456")
	require.NoError(t, err)

	visitorID, err := service.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "visitor-456", visitorID)
}

func TestVisitorTokens_Validate_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	service := NewVisitorTokens("test-secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	token, _, err := service.Issue("visitor-123")
	require.NoError(t, err)

	service.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	visitorID, err := service.Validate(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Empty(t, visitorID)
}

func TestVisitorTokens_Validate_Invalid(t *testing.T) {
	service := newTestVisitorTokens()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visitorID, err := service.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, visitorID)
		})
	}
}

func TestVisitorTokens_Validate_WrongSignature(t *testing.T) {
	service1 := NewVisitorTokens("secret-key-1", time.Hour)
	service2 := NewVisitorTokens("secret-key-2", time.Hour)

	token, _, err := service1.Issue("visitor-123")
	require.NoError(t, err)

	_, err = service2.Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVisitorTokens_Validate_WrongAlgorithm(t *testing.T) {
	service := newTestVisitorTokens()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &VisitorClaims{VisitorID: "visitor-123"})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.Validate(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVisitorTokens_Validate_MissingVisitorID(t *testing.T) {
	service := newTestVisitorTokens()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tokenString, err := token.SignedString([]byte("test-secret-key-for-testing-purposes"))
	require.NoError(t, err)

	_, err = service.Validate(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

// ============================================
// TokenExpiry
// ============================================

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	// Signed with a key the storefront never sees
	tokenString, err := token.SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)

	got, err := TokenExpiry(tokenString)

	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestTokenExpiry_Errors(t *testing.T) {
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	noExpString, err := noExp.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = TokenExpiry(noExpString)
	assert.ErrorIs(t, err, ErrNoExpiry)

	_, err = TokenExpiry("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
