// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/torii/internal/platform/apperr"
	"github.com/taibuivan/torii/internal/platform/constants"
	"github.com/taibuivan/torii/internal/platform/mailer"
	"github.com/taibuivan/torii/internal/platform/sec"
	"github.com/taibuivan/torii/internal/platform/state"
	"github.com/taibuivan/torii/internal/platform/validate"
	"github.com/taibuivan/torii/pkg/ulid"
)

// apiSecretPrefix marks cleartext API secrets so leaked values are
// recognizable in scanner rules.
const apiSecretPrefix = "au_"

// Service implements the operator use cases.
//
// # OTP Gate
//
// SendEmail seeds a one-hour code under admin:verification:<email>; every
// other operation consumes that code atomically (GET+DEL in one pipeline),
// so a code authorizes exactly one mutation.
type Service struct {
	store Store
	state *state.State
	mail  mailer.Mailer
}

// NewService constructs the admin [Service] with its dependencies.
func NewService(store Store, st *state.State, mail mailer.Mailer) *Service {
	return &Service{store: store, state: st, mail: mail}
}

// SendEmail issues the one-hour operator OTP for the given address.
func (service *Service) SendEmail(ctx context.Context, email string) error {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).Err(); err != nil {
		return err
	}

	code := sec.GenerateOTP()
	key := service.otpKey(email)

	if err := service.state.Redis.Set(ctx, key, code, constants.OTPTTL).Err(); err != nil {
		return apperr.Internal(err)
	}
	if err := service.mail.SendOTP(ctx, email, "admin verification", code); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// CreateAdmin enrolls a new operator account after consuming the OTP.
func (service *Service) CreateAdmin(ctx context.Context, email, otp, description string) (*Admin, error) {
	v := &validate.Validator{}
	err := v.
		Required("email", email).
		Email("email", email).
		OTP("otp", otp).
		MaxLen("description", description, 500).
		Err()
	if err != nil {
		return nil, err
	}

	if err := service.consumeOTP(ctx, email, otp); err != nil {
		return nil, err
	}
	return service.store.CreateAdmin(ctx, email, description)
}

// DeleteAdmin removes an operator account after consuming the OTP. The
// account's API keys cascade.
func (service *Service) DeleteAdmin(ctx context.Context, email, otp string) error {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).OTP("otp", otp).Err(); err != nil {
		return err
	}

	if err := service.consumeOTP(ctx, email, otp); err != nil {
		return err
	}
	return service.store.DeleteAdmin(ctx, email)
}

// ListApiKeys returns the admin's keys after consuming the OTP.
func (service *Service) ListApiKeys(ctx context.Context, email, otp string) ([]APIKey, error) {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).OTP("otp", otp).Err(); err != nil {
		return nil, err
	}

	if err := service.consumeOTP(ctx, email, otp); err != nil {
		return nil, err
	}
	return service.store.ListAPIKeys(ctx, email)
}

// CreateApiKey mints a machine credential after consuming the OTP.
//
// The secret is a prefixed ULID stored only as a bcrypt hash; the returned
// cleartext is the caller's single chance to record it. The api_key
// identifier is the row's own ULID.
func (service *Service) CreateApiKey(ctx context.Context, email, otp, description string) (apiKey, apiSecret string, err error) {
	v := &validate.Validator{}
	err = v.
		Required("email", email).
		Email("email", email).
		OTP("otp", otp).
		MaxLen("description", description, 500).
		Err()
	if err != nil {
		return "", "", err
	}

	if err := service.consumeOTP(ctx, email, otp); err != nil {
		return "", "", err
	}

	apiSecret = apiSecretPrefix + ulid.New()
	secretHash, err := sec.HashPassword(apiSecret)
	if err != nil {
		return "", "", apperr.Internal(err)
	}

	apiKey, err = service.store.CreateAPIKey(ctx, email, description, secretHash)
	if err != nil {
		return "", "", err
	}
	return apiKey, apiSecret, nil
}

// DeleteApiKey removes a machine credential after consuming the OTP.
func (service *Service) DeleteApiKey(ctx context.Context, email, otp, apiKey string) error {
	v := &validate.Validator{}
	err := v.Required("email", email).Email("email", email).OTP("otp", otp).Required("api_key", apiKey).Err()
	if err != nil {
		return err
	}

	if err := service.consumeOTP(ctx, email, otp); err != nil {
		return err
	}
	return service.store.DeleteAPIKey(ctx, apiKey)
}

// otpKey builds the namespaced verification key for an operator email.
func (service *Service) otpKey(email string) string {
	return service.state.Env.RedisSchema + ":" + constants.RedisPrefixAdminVerification + email
}

// consumeOTP reads and deletes the stored code in one atomic pipeline, then
// compares it. A second caller racing on the same code loses: the GET inside
// the pipeline observes nothing.
func (service *Service) consumeOTP(ctx context.Context, email, otp string) error {
	key := service.otpKey(email)

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
	if value != otp {
		return apperr.OTPInvalid("OTP is invalid")
	}
	return nil
}
