// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers transactional email: one-time codes for two-factor
login, admin verification, email-ownership confirmation, and password resets.

The [Mailer] interface keeps the service layer free of delivery detail; the
Postmark implementation is the production transport.
*/
package mailer

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Mailer sends transactional messages on behalf of the platform.
type Mailer interface {
	// SendOTP delivers a one-time code with a purpose line ("login
	// verification", "admin verification", ...).
	SendOTP(ctx context.Context, recipient, purpose, code string) error
}

// # Postmark Implementation

// PostmarkMailer delivers mail through the Postmark API.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer creates a mailer backed by a Postmark server token.
func NewPostmarkMailer(serverToken, fromAddress string) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(serverToken, ""),
		from:   fromAddress,
	}
}

// SendOTP implements [Mailer].
func (mailer *PostmarkMailer) SendOTP(ctx context.Context, recipient, purpose, code string) error {
	email := postmark.Email{
		From:     mailer.from,
		To:       recipient,
		Subject:  fmt.Sprintf("Your %s code", purpose),
		HTMLBody: renderOTPBody(purpose, code),
		TextBody: fmt.Sprintf("Your %s code is %s. It expires in one hour.", purpose, code),
		Tag:      "otp",
	}

	if _, err := mailer.client.SendEmail(ctx, email); err != nil {
		return fmt.Errorf("mailer: failed to send OTP email: %w", err)
	}
	return nil
}

// renderOTPBody produces the minimal HTML template used for all code emails.
func renderOTPBody(purpose, code string) string {
	return fmt.Sprintf(`<html><body>
<p>Your %s code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>
<p>This code expires in one hour. If you did not request it, you can ignore this email.</p>
</body></html>`, purpose, code)
}

// # Null Implementation

// NullMailer swallows all messages. Used in tests and local development.
type NullMailer struct{}

// SendOTP implements [Mailer].
func (NullMailer) SendOTP(context.Context, string, string, string) error { return nil }
