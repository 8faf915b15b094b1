package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "secondchance/internal/errors"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.Issue("user-123", 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.User.ID)
	assert.Nil(t, claims.ExpiresAt, "zero ttl must not set an expiry")
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWTService_IssueWithExpiry(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.Issue("user-123", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue("user-123", time.Hour)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	token, err := svc.Issue("user-123", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[10] == 'A' {
		sig[10] = 'B'
	} else {
		sig[10] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("test-secret")

	otherSecret, err := NewJWTService("other-secret").Issue("user-123", time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{User: UserClaim{ID: "user-123"}})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := svc.Issue("", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", otherSecret},
		{"alg none", noneToken},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"missing user id", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
		})
	}
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", StripBearer("Bearer abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", StripBearer("bearer  abc.def.ghi "))
	assert.Equal(t, "abc.def.ghi", StripBearer("abc.def.ghi"))
	assert.Equal(t, "", StripBearer("Bearer "))
}
