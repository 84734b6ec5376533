package userservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	user := &User{ID: 42, Username: "root"}

	token, err := NewAccessToken(secret, user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	identity, err := VerifyAccessToken(secret, token)
	assert.NoError(t, err)
	assert.Equal(t, 42, identity.ID)
	assert.Equal(t, "root", identity.Username)
}

func TestVerifyAccessTokenFailures(t *testing.T) {
	secret := []byte("test-secret")

	signed := func(claims jwt.Claims, key []byte, method jwt.SigningMethod) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		assert.NoError(t, err)
		return token
	}

	now := time.Now()

	testCases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "garbage token",
			token:   "not.a.token",
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: signed(accessClaims{
				Username: "root",
				UserID:   1,
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}, []byte("other-secret"), jwt.SigningMethodHS256),
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong signing method",
			token: signed(accessClaims{
				Username: "root",
				UserID:   1,
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}, secret, jwt.SigningMethodHS512),
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired token",
			token: signed(accessClaims{
				Username: "root",
				UserID:   1,
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
					ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
				},
			}, secret, jwt.SigningMethodHS256),
			wantErr: ErrInvalidToken,
		},
		{
			// a signature-valid token without a subject id is rejected with a
			// distinct error
			name: "missing subject id",
			token: signed(accessClaims{
				Username: "root",
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}, secret, jwt.SigningMethodHS256),
			wantErr: ErrInvalidSubject,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := VerifyAccessToken(secret, tc.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
