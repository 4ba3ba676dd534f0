package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a custom session credential. The
// subject and the uid claim both hold the student's join key; no password or
// other secret material is ever embedded.
type SessionClaims struct {
	StudentID string `json:"uid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// PasswordResetClaims are the claims carried by a password reset credential.
// The credential on its own grants nothing: its registered ID must still
// match a live reset grant in the credential store.
type PasswordResetClaims struct {
	StudentID string `json:"uid"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator signs and validates the custom credentials exchanged with
// the identity provider. Only HS256 is accepted; a token signed with any
// other method fails validation outright.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// GenerateToken signs the given claims with the secret.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateSessionToken validates a custom session credential and returns its
// claims. Expiry, issuer and audience are all enforced.
func (a *JWTAuthenticator) ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ValidateResetToken validates a password reset credential and returns its
// claims, enforcing the same expiry, issuer and audience rules as session
// tokens.
func (a *JWTAuthenticator) ValidateResetToken(tokenString, secret string) (*PasswordResetClaims, error) {
	claims := &PasswordResetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
