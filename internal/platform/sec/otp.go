// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"math/big"
)

// OTPLength is the digit count of every one-time password in the system.
const OTPLength = 6

// GenerateOTP returns a 6-digit numeric one-time password.
//
// Each digit is drawn independently from crypto/rand, so leading zeros are
// possible and the code space is the full 10^6.
func GenerateOTP() string {
	digits := make([]byte, OTPLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// entropy failure is an unrecoverable system-level error
			panic("sec: failed to generate OTP: " + err.Error())
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
