package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jmcleod/adminshell/internal/uuid"
)

const tokenIssuer = "adminshell"

var errInvalidClientToken = errors.New("invalid client token")

// tokenSigner signs and verifies client cookies. A cookie is an HS256 JWT
// whose subject is the client id.
type tokenSigner struct {
	secret []byte
}

func (s tokenSigner) sign(clientID string, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  clientID,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing client token: %w", err)
	}
	return signed, nil
}

// parse returns the client id carried by a valid token.
func (s tokenSigner) parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidClientToken, err)
	}
	if !uuid.Valid(claims.Subject) {
		return "", fmt.Errorf("%w: malformed subject", errInvalidClientToken)
	}
	return claims.Subject, nil
}
