package userservice

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token invalid")
	// ErrInvalidSubject is returned for a token whose signature verifies but
	// whose id claim is zero or absent. Kept distinct from ErrInvalidToken so
	// callers can tell a forged token from a malformed one.
	ErrInvalidSubject = errors.New("token subject missing")
)

type accessClaims struct {
	Username string `json:"username"`
	UserID   int    `json:"id"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an HS256 token carrying the user's username and id.
func NewAccessToken(secret []byte, user *User) (string, error) {
	now := time.Now()

	claims := accessClaims{
		Username: user.Username,
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccessToken checks the token signature and standard claims against
// the server secret and resolves the embedded subject identity. Verification
// is pure: no state is read or written.
func VerifyAccessToken(secret []byte, token string) (*Identity, error) {
	var claims accessClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return nil, ErrInvalidSubject
	}

	return &Identity{ID: claims.UserID, Username: claims.Username}, nil
}
