// Package auth issues and checks session tokens and room passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

var signingKey []byte

// Init sets the HMAC key for every token issued or checked afterwards.
func Init(secret string) {
	signingKey = []byte(secret)
}

// CreateJWT issues a token whose subject is the user's id.
func CreateJWT(userID uuid.UUID, username string) (string, error) {
	if len(signingKey) == 0 {
		return "", errors.New("auth: signing key not initialised")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"name": username,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// AuthenticateJWT verifies token and returns the user id and name it carries.
func AuthenticateJWT(token string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	return id, name, nil
}
