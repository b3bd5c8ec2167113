// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/torii/internal/platform/config"
)

// KeyPair holds one token type's RSA signing pair and its configured
// lifetime. Immutable for process lifetime.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	// Exp is the configured lifetime in seconds.
	Exp int64
}

// KeySet holds the four key pairs, one per credential class.
type KeySet struct {
	Refresh KeyPair
	Access  KeyPair
	Session KeyPair
	Reauth  KeyPair
}

// Pair returns the key pair for a kind.
func (keys *KeySet) Pair(kind Kind) KeyPair {
	switch kind {
	case KindRefresh:
		return keys.Refresh
	case KindAccess:
		return keys.Access
	case KindSession:
		return keys.Session
	default:
		return keys.Reauth
	}
}

// LoadKeys parses the four PEM key pairs from configuration.
func LoadKeys(cfg *config.Config) (*KeySet, error) {
	keys := &KeySet{}

	load := func(name string, private, public []byte, exp int64, target *KeyPair) error {
		privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(private)
		if err != nil {
			return fmt.Errorf("token: failed to parse %s private key: %w", name, err)
		}
		publicKey, err := jwt.ParseRSAPublicKeyFromPEM(public)
		if err != nil {
			return fmt.Errorf("token: failed to parse %s public key: %w", name, err)
		}
		*target = KeyPair{Private: privateKey, Public: publicKey, Exp: exp}
		return nil
	}

	if err := load("refresh", cfg.RefreshTokenPrivateKey, cfg.RefreshTokenPublicKey, cfg.RefreshTokenExpiration, &keys.Refresh); err != nil {
		return nil, err
	}
	if err := load("access", cfg.AccessTokenPrivateKey, cfg.AccessTokenPublicKey, cfg.AccessTokenExpiration, &keys.Access); err != nil {
		return nil, err
	}
	if err := load("session", cfg.SessionTokenPrivateKey, cfg.SessionTokenPublicKey, cfg.SessionTokenExpiration, &keys.Session); err != nil {
		return nil, err
	}
	if err := load("reauth", cfg.ReauthTokenPrivateKey, cfg.ReauthTokenPublicKey, cfg.ReauthTokenExpiration, &keys.Reauth); err != nil {
		return nil, err
	}

	return keys, nil
}
