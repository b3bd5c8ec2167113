// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"github.com/taibuivan/torii/internal/token"
)

// User is the account entity persisted in the durable store.
type User struct {
	// ID is the 26-character ULID primary key.
	ID       string
	Email    string
	Username string
	Name     string
	// Password is the bcrypt hash; nil for accounts created through an
	// external identity provider.
	Password *string
	PhotoURL *string

	IsEmailVerified    bool
	IsTwoFactorEnabled bool
}

// Details projects the public profile carried inside session tokens.
func (user *User) Details() token.UserDetails {
	details := token.UserDetails{
		ID:                 user.ID,
		Email:              user.Email,
		Username:           user.Username,
		Name:               user.Name,
		IsEmailVerified:    user.IsEmailVerified,
		IsTwoFactorEnabled: user.IsTwoFactorEnabled,
	}
	if user.PhotoURL != nil {
		details.PhotoURL = *user.PhotoURL
	}
	return details
}

// Session is the durable record of an authenticated login, keyed by the
// refresh token's jti.
type Session struct {
	// ID is the rjti of the owning refresh token.
	ID        string
	UserID    string
	IPAddress string
	LoginAt   int64
	Exp       int64

	DeviceVendor   *string
	DeviceModel    *string
	OSName         *string
	OSVersion      *string
	BrowserName    *string
	BrowserVersion *string

	Country  *string
	City     *string
	Region   *string
	Timezone *string
	Lat      *float64
	Lon      *float64
	MapURL   *string
}
