// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the account and session lifecycle: registration,
// login with optional two-factor, token refresh, reauthentication, logout,
// account deletion, and the email-code flows for verification, password
// reset, and profile changes.
//
// # Architecture
//
// The service orchestrates the durable stores and the token engine through
// interfaces and never touches HTTP or SQL directly. Every error leaving
// this layer is an [apperr.AppError].
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/torii/internal/platform/apperr"
	"github.com/taibuivan/torii/internal/platform/constants"
	"github.com/taibuivan/torii/internal/platform/ctxutil"
	"github.com/taibuivan/torii/internal/platform/mailer"
	"github.com/taibuivan/torii/internal/platform/sec"
	"github.com/taibuivan/torii/internal/platform/state"
	"github.com/taibuivan/torii/internal/platform/validate"
	"github.com/taibuivan/torii/internal/token"
)

// Service implements the account and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login, or
// revocation logic must be reviewed carefully.
type Service struct {
	users    UserStore
	sessions SessionStore
	engine   *token.Engine
	state    *state.State
	mail     mailer.Mailer
	logger   *slog.Logger
}

// NewService constructs the auth [Service] with its dependencies.
func NewService(
	users UserStore,
	sessions SessionStore,
	engine *token.Engine,
	st *state.State,
	mail mailer.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		engine:   engine,
		state:    st,
		mail:     mail,
		logger:   logger,
	}
}

// # Inputs & Outputs

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginInput holds the credential bundle presented at login.
type LoginInput struct {
	// Credential matches either email or username.
	Credential string `json:"credential"`
	Password   string `json:"password"`
	// OTP is required when the account has two-factor enabled.
	OTP       string `json:"otp,omitempty"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// TokenItem is one issued credential as returned on the wire.
type TokenItem struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// LoginOutput carries the factory triple.
type LoginOutput struct {
	Refresh TokenItem `json:"refresh"`
	Access  TokenItem `json:"access"`
	Session TokenItem `json:"session"`
}

// # Registration

// Register validates, hashes, and persists a brand new account.
//
// # Business Rules
//   - Email and username are unique; violations surface as ALREADY_EXISTS.
//   - New accounts start with two-factor enabled and email unverified.
func (service *Service) Register(ctx context.Context, input RegisterInput) error {
	v := &validate.Validator{}
	err := v.
		Required("email", input.Email).
		Email("email", input.Email).
		Required("username", input.Username).
		Username("username", input.Username).
		Required("name", input.Name).
		MinLen("name", input.Name, 3).
		MaxLen("name", input.Name, 100).
		Password("password", input.Password).
		Err()
	if err != nil {
		return err
	}

	_, err = service.users.Create(ctx, CreateUserInput{
		Provider: "email",
		Email:    input.Email,
		Username: input.Username,
		Name:     input.Name,
		Password: &input.Password,
	})
	return err
}

// # Login

// Login verifies the credential bundle and issues the factory triple.
//
// # Flow
//  1. Resolve the user by email or username.
//  2. Reject provider-created accounts that have no stored password.
//  3. Verify the password against the stored hash.
//  4. With two-factor enabled, require and check the OTP binding.
//  5. Issue (refresh, access, session) through the factory.
//  6. Detach a background task that writes the session row, compensates on
//     failure, and sweeps expired sessions.
//
// The response never waits on step 6; the returned tokens are usable
// immediately from the cache bindings alone.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	v := &validate.Validator{}
	if err := v.Required("credential", input.Credential).Required("password", input.Password).Err(); err != nil {
		return nil, err
	}

	user, err := service.users.GetByCredential(ctx, input.Credential)
	if err != nil {
		return nil, err
	}

	if user.Password == nil {
		return nil, apperr.InvalidProvider("Cannot login with a password, this account uses another login provider")
	}
	if !sec.CheckPasswordHash(input.Password, *user.Password) {
		return nil, apperr.IncorrectCredentials(errors.New("password mismatch"))
	}

	if user.IsTwoFactorEnabled {
		if input.OTP == "" {
			return nil, apperr.OTPRequired("OTP is required to login")
		}
		key := service.state.Env.RedisSchema + ":" + constants.RedisPrefixTwoFactorOTP + input.OTP
		if err := service.state.Redis.Get(ctx, key).Err(); err != nil {
			if err == redis.Nil {
				return nil, apperr.OTPInvalid("OTP is invalid")
			}
			return nil, apperr.Internal(err)
		}
	}

	triple, err := service.engine.IssueTriple(ctx, user.Details())
	if err != nil {
		return nil, service.wrapTokenErr(err)
	}

	service.spawnSessionWrite(ctx, triple.Refresh.Claims.JTI, user.ID, input.IPAddress, input.UserAgent)

	return &LoginOutput{
		Refresh: TokenItem{Token: triple.Refresh.Token, Expires: triple.Refresh.Claims.Exp},
		Access:  TokenItem{Token: triple.Access.Token, Expires: triple.Access.Claims.Exp},
		Session: TokenItem{Token: triple.Session.Token, Expires: triple.Session.Claims.Exp},
	}, nil
}

// spawnSessionWrite runs the durable session insert detached from the
// request lifetime. On failure it deletes the freshly issued refresh binding
// so the cache and the durable store converge; the expired-session sweep
// runs independently of that outcome.
func (service *Service) spawnSessionWrite(ctx context.Context, rjti, userID, ipAddress, userAgent string) {
	detached := context.WithoutCancel(ctx)
	logger := ctxutil.GetLogger(ctx)

	go func() {
		if err := service.sessions.Create(detached, rjti, userID, ipAddress, userAgent); err != nil {
			if deleteErr := service.engine.Refresh(userID).Delete(detached, rjti); deleteErr != nil {
				logger.Error("login_compensation_failed",
					slog.String("rjti", rjti),
					slog.String("error", deleteErr.Error()),
				)
			}
			logger.Error("login_session_write_failed",
				slog.String("rjti", rjti),
				slog.String("error", err.Error()),
			)
		}

		if err := service.sessions.DeleteExpired(detached, userID); err != nil {
			logger.Error("login_expired_sweep_failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// # Token Lifecycle

// Refresh rotates the access token under a live refresh binding.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenItem, error) {
	claims, err := service.engine.Refresh("").Verify(ctx, refreshToken)
	if err != nil {
		return nil, service.wrapTokenErr(err)
	}

	rotated, err := service.engine.Access(claims.Sub).Create(ctx, token.Params{RJTI: claims.JTI})
	if err != nil {
		return nil, service.wrapTokenErr(err)
	}

	return &TokenItem{Token: rotated.Token, Expires: rotated.Claims.Exp}, nil
}

// ReauthToken exchanges a live access token plus the account password for a
// short-lived reauth credential gating sensitive operations.
func (service *Service) ReauthToken(ctx context.Context, accessToken, password string) (*TokenItem, error) {
	claims, err := service.engine.Access("").Verify(ctx, accessToken)
	if err != nil {
		return nil, service.wrapTokenErr(err)
	}

	user, err := service.users.GetByID(ctx, claims.Sub)
	if err != nil {
		return nil, err
	}
	if err := service.checkPassword(user, password); err != nil {
		return nil, err
	}

	reauth, err := service.engine.Reauth(user.ID).Create(ctx)
	if err != nil {
		return nil, service.wrapTokenErr(err)
	}

	return &TokenItem{Token: reauth.Token, Expires: reauth.Claims.Exp}, nil
}

// VerifyToken checks an access token (signature plus cache binding) and
// returns the owning user id.
func (service *Service) VerifyToken(ctx context.Context, accessToken string) (string, error) {
	claims, err := service.engine.Access("").Verify(ctx, accessToken)
	if err != nil {
		return "", service.wrapTokenErr(err)
	}
	return claims.Sub, nil
}

// Logout revokes the presented refresh token: both cache bindings and the
// session row are removed together.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := service.engine.Refresh("").Verify(ctx, refreshToken)
	if err != nil {
		return service.wrapTokenErr(err)
	}
	if err := service.engine.Refresh(claims.Sub).Delete(ctx, claims.JTI); err != nil {
		return service.wrapTokenErr(err)
	}
	return nil
}

// Delete destroys the account after reauth. Every live session is revoked
// first; the user row deletion cascades to sessions and provider linkages.
func (service *Service) Delete(ctx context.Context, reauthToken string) error {
	claims, err := service.engine.Reauth("").Verify(ctx, reauthToken)
	if err != nil {
		return service.wrapTokenErr(err)
	}

	if err := service.revokeAllSessions(ctx, claims.Sub); err != nil {
		return err
	}
	return service.users.Delete(ctx, claims.Sub)
}

// revokeAllSessions drops the cache bindings and rows of every live session.
// Bindings already expired from the cache are skipped, not errors.
func (service *Service) revokeAllSessions(ctx context.Context, userID string) error {
	rjtis, err := service.sessions.ListRefreshIDs(ctx, userID)
	if err != nil {
		return err
	}

	for _, rjti := range rjtis {
		if err := service.engine.Refresh(userID).Delete(ctx, rjti); err != nil {
			if token.IsValidation(err) {
				// Binding already gone; the row delete above still ran.
				continue
			}
			return service.wrapTokenErr(err)
		}
	}
	return nil
}

// # Email Codes

// SendEmailVerification issues a one-hour code confirming ownership of the
// account's current address.
func (service *Service) SendEmailVerification(ctx context.Context, email string) error {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).Err(); err != nil {
		return err
	}

	if _, err := service.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	return service.issueCode(ctx, constants.RedisPrefixEmailVerification+email, email, "email verification")
}

// SendEmailVerificationForNewEmail issues a one-hour code for the address an
// authenticated user wants to move to.
func (service *Service) SendEmailVerificationForNewEmail(ctx context.Context, accessToken, newEmail string) error {
	v := &validate.Validator{}
	if err := v.Required("email", newEmail).Email("email", newEmail).Err(); err != nil {
		return err
	}

	if _, err := service.engine.Access("").Verify(ctx, accessToken); err != nil {
		return service.wrapTokenErr(err)
	}
	return service.issueCode(ctx, constants.RedisPrefixEmailChange+newEmail, newEmail, "email change verification")
}

// VerifyEmailToken consumes a verification code and marks the address
// confirmed.
func (service *Service) VerifyEmailToken(ctx context.Context, email, code string) error {
	if err := service.consumeCode(ctx, constants.RedisPrefixEmailVerification+email, code); err != nil {
		return err
	}

	user, err := service.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return service.users.SetEmailVerified(ctx, user.ID)
}

// ForgotPassword issues a one-hour reset code to a registered address.
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).Err(); err != nil {
		return err
	}

	if _, err := service.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	return service.issueCode(ctx, constants.RedisPrefixPasswordReset+email, email, "password reset")
}

// VerifyForgotPasswordToken checks a reset code without consuming it, so the
// client can validate before showing the new-password form.
func (service *Service) VerifyForgotPasswordToken(ctx context.Context, email, code string) error {
	key := service.state.Env.RedisSchema + ":" + constants.RedisPrefixPasswordReset + email

	stored, err := service.state.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return apperr.OTPInvalid("OTP is invalid")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if stored != code {
		return apperr.OTPInvalid("OTP is invalid")
	}
	return nil
}

// ResetPassword consumes the reset code, replaces the stored hash, and
// revokes every live session so stolen tokens die with the old password.
func (service *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	v := &validate.Validator{}
	if err := v.Password("password", newPassword).Err(); err != nil {
		return err
	}

	if err := service.consumeCode(ctx, constants.RedisPrefixPasswordReset+email, code); err != nil {
		return err
	}

	user, err := service.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	return service.revokeAllSessions(ctx, user.ID)
}

// # Profile Changes

// ChangeEmail moves the account to a new address. Requires a reauth token
// and the code previously sent to the new address; the verified flag resets.
func (service *Service) ChangeEmail(ctx context.Context, reauthToken, newEmail, code string) error {
	v := &validate.Validator{}
	if err := v.Required("email", newEmail).Email("email", newEmail).Err(); err != nil {
		return err
	}

	claims, err := service.engine.Reauth("").Verify(ctx, reauthToken)
	if err != nil {
		return service.wrapTokenErr(err)
	}

	if err := service.consumeCode(ctx, constants.RedisPrefixEmailChange+newEmail, code); err != nil {
		return err
	}
	return service.users.UpdateEmail(ctx, claims.Sub, newEmail)
}

// ChangeUsername swaps the unique handle. Requires a reauth token.
func (service *Service) ChangeUsername(ctx context.Context, reauthToken, newUsername string) error {
	v := &validate.Validator{}
	if err := v.Required("username", newUsername).Username("username", newUsername).Err(); err != nil {
		return err
	}

	claims, err := service.engine.Reauth("").Verify(ctx, reauthToken)
	if err != nil {
		return service.wrapTokenErr(err)
	}
	return service.users.UpdateUsername(ctx, claims.Sub, newUsername)
}

// ChangePassword replaces the password after reauth plus current-password
// proof, then revokes every live session. A reauth token carries no session
// identity, so the revocation cannot exempt the caller's own session.
func (service *Service) ChangePassword(ctx context.Context, reauthToken, currentPassword, newPassword string) error {
	v := &validate.Validator{}
	if err := v.Password("password", newPassword).Err(); err != nil {
		return err
	}

	claims, err := service.engine.Reauth("").Verify(ctx, reauthToken)
	if err != nil {
		return service.wrapTokenErr(err)
	}

	user, err := service.users.GetByID(ctx, claims.Sub)
	if err != nil {
		return err
	}
	if err := service.checkPassword(user, currentPassword); err != nil {
		return err
	}

	hashed, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	return service.revokeAllSessions(ctx, user.ID)
}

// # Helpers

// checkPassword verifies a plain-text secret against the account's hash.
func (service *Service) checkPassword(user *User, password string) error {
	if user.Password == nil {
		return apperr.InvalidProvider("Cannot verify a password, this account uses another login provider")
	}
	if !sec.CheckPasswordHash(password, *user.Password) {
		return apperr.IncorrectCredentials(errors.New("password mismatch"))
	}
	return nil
}

// issueCode generates a 6-digit code, stores it under the namespaced key for
// one hour, and emails it.
func (service *Service) issueCode(ctx context.Context, suffix, recipient, purpose string) error {
	code := sec.GenerateOTP()
	key := service.state.Env.RedisSchema + ":" + suffix

	if err := service.state.Redis.Set(ctx, key, code, constants.OTPTTL).Err(); err != nil {
		return apperr.Internal(err)
	}
	if err := service.mail.SendOTP(ctx, recipient, purpose, code); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// consumeCode reads and deletes a stored code in one atomic pipeline, then
// compares it. A missing or mismatched code is an OTP failure.
func (service *Service) consumeCode(ctx context.Context, suffix, code string) error {
	key := service.state.Env.RedisSchema + ":" + suffix

	pipe := service.state.Redis.TxPipeline()
	stored := pipe.Get(ctx, key)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return apperr.Internal(err)
	}

	value, err := stored.Result()
	if err == redis.Nil {
		return apperr.OTPInvalid("OTP is invalid")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if value != code {
		return apperr.OTPInvalid("OTP is invalid")
	}
	return nil
}

// wrapTokenErr lifts a token-engine error into the outer taxonomy.
func (service *Service) wrapTokenErr(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if token.IsValidation(err) {
		return apperr.Unauthorized(err.Error())
	}
	return apperr.Internal(fmt.Errorf("auth_service_token_failed: %w", err))
}
