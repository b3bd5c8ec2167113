// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives shared across the platform:
// adaptive password hashing and one-time-password generation.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It
// holds no state and performs no I/O; signing and token management live in
// the token engine.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text secret using the bcrypt algorithm.
//
// Default cost is used for balance between security and CPU utilization
// during registration spikes. The same function protects user passwords and
// admin API-key secrets.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text secret with its hashed version
// using bcrypt's constant-time comparison.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
