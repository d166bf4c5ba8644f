package mailtmtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims are the claims carried by issued bearer tokens.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer(secret []byte) *tokenIssuer {
	return &tokenIssuer{secret: secret}
}

func (t *tokenIssuer) issue(accountID, address string, now time.Time) (string, error) {
	claims := tokenClaims{
		Username: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify returns the account ID the token was issued to.
func (t *tokenIssuer) verify(raw string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
