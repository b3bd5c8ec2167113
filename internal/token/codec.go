// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
)

// signingMethods pins verification to RS256; tokens signed with any other
// algorithm (including "none") are rejected before claim validation.
var signingMethods = []string{jwt.SigningMethodRS256.Alg()}

// encode signs a claims envelope into its compact serialization.
func encode(claims Claims, privateKey *rsa.PrivateKey) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if err != nil {
		return "", ErrCreation(err)
	}
	return signed, nil
}

// decode parses and verifies a compact token into the supplied envelope.
//
// Verification enforces the RS256 signature, exp > now, and nbf <= now. No
// audience or issuer checks are applied.
func decode[C Claims](tokenString string, publicKey *rsa.PublicKey, claims C) (C, error) {
	var zero C

	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (interface{}, error) { return publicKey, nil },
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return zero, ErrValidationCause(err)
	}
	if !parsed.Valid {
		return zero, ErrValidation("token is invalid")
	}

	return claims, nil
}
