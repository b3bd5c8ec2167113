// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/torii/internal/auth"
	"github.com/taibuivan/torii/internal/platform/apperr"
	"github.com/taibuivan/torii/internal/platform/config"
	"github.com/taibuivan/torii/internal/platform/sec"
	"github.com/taibuivan/torii/internal/platform/state"
	"github.com/taibuivan/torii/internal/token"
	"github.com/taibuivan/torii/pkg/ulid"
)

const testSchema = "torii"

// # Fakes

// fakeUserStore keeps accounts in memory with the same uniqueness and
// hashing rules as the PostgreSQL implementation.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*auth.User{}}
}

func (store *fakeUserStore) Create(_ context.Context, input auth.CreateUserInput) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.users {
		if existing.Email == input.Email || existing.Username == input.Username {
			return nil, apperr.UniqueViolation("Resource already exists", nil)
		}
	}

	user := &auth.User{
		ID:                 ulid.New(),
		Email:              input.Email,
		Username:           input.Username,
		Name:               input.Name,
		PhotoURL:           input.PhotoURL,
		IsTwoFactorEnabled: true,
	}
	if input.Password != nil {
		hashed, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = &hashed
	}
	store.users[user.ID] = user
	return user, nil
}

func (store *fakeUserStore) GetByCredential(_ context.Context, credential string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.Email == credential || user.Username == credential {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (store *fakeUserStore) GetByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (store *fakeUserStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (store *fakeUserStore) UpdateEmail(_ context.Context, id, newEmail string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.Email = newEmail
	user.IsEmailVerified = false
	return nil
}

func (store *fakeUserStore) UpdateUsername(_ context.Context, id, newUsername string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.Username = newUsername
	return nil
}

func (store *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.Password = &passwordHash
	return nil
}

func (store *fakeUserStore) SetEmailVerified(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.IsEmailVerified = true
	return nil
}

func (store *fakeUserStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.users[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(store.users, id)
	return nil
}

// fakeSessionStore keeps session rows in memory. It also satisfies the token
// engine's session hook so refresh deletion exercises the same store.
type fakeSessionStore struct {
	mu         sync.Mutex
	rows       map[string]string // rjti -> userID
	failCreate error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{rows: map[string]string{}}
}

func (store *fakeSessionStore) Create(_ context.Context, rjti, userID, _, _ string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failCreate != nil {
		return store.failCreate
	}
	store.rows[rjti] = userID
	return nil
}

func (store *fakeSessionStore) Delete(_ context.Context, rjti string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.rows, rjti)
	return nil
}

func (store *fakeSessionStore) DeleteExpired(context.Context, string) error { return nil }

func (store *fakeSessionStore) ListRefreshIDs(_ context.Context, userID string) ([]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var ids []string
	for rjti, owner := range store.rows {
		if owner == userID {
			ids = append(ids, rjti)
		}
	}
	return ids, nil
}

func (store *fakeSessionStore) DeleteSession(ctx context.Context, rjti string) error {
	return store.Delete(ctx, rjti)
}

func (store *fakeSessionStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.rows)
}

// recordingMailer captures every OTP email instead of sending it.
type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string // recipient -> last code
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: map[string]string{}}
}

func (m *recordingMailer) SendOTP(_ context.Context, recipient, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[recipient] = code
	return nil
}

func (m *recordingMailer) lastCode(recipient string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[recipient]
}

// # Harness

type testHarness struct {
	service  *auth.Service
	engine   *token.Engine
	users    *fakeUserStore
	sessions *fakeSessionStore
	mail     *recordingMailer
	redis    *miniredis.Miniredis
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	newPair := func(exp int64) token.KeyPair {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		return token.KeyPair{Private: key, Public: &key.PublicKey, Exp: exp}
	}
	keys := &token.KeySet{
		Refresh: newPair(30 * 24 * 3600),
		Access:  newPair(3600),
		Session: newPair(30 * 24 * 3600),
		Reauth:  newPair(300),
	}

	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	mail := newRecordingMailer()

	st := state.New(nil, client, &config.Config{RedisSchema: testSchema})
	engine := token.NewEngine(st, keys, sessions)
	service := auth.NewService(users, sessions, engine, st, mail, slog.Default())

	return &testHarness{
		service:  service,
		engine:   engine,
		users:    users,
		sessions: sessions,
		mail:     mail,
		redis:    server,
	}
}

// registerAlice enrolls the standard test account.
func registerAlice(t *testing.T, h *testHarness) {
	t.Helper()
	err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Name:     "Alice Doe",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)
}

// loginAlice performs a two-factor login with a seeded OTP and waits for the
// detached session write to land.
func loginAlice(t *testing.T, h *testHarness) *auth.LoginOutput {
	t.Helper()
	require.NoError(t, h.redis.Set(testSchema+":twofactor:otp:123456", "1"))

	before := h.sessions.count()
	output, err := h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "Sup3rSecret",
		OTP:        "123456",
		IPAddress:  "127.0.0.1",
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) Firefox/126.0",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.sessions.count() == before+1 },
		2*time.Second, 10*time.Millisecond, "session row never landed")
	return output
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	return appError.Kind
}

// # Scenarios

func TestRegisterLogin_TwoFactor(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)

	// Without an OTP the login is refused as a precondition failure.
	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "Sup3rSecret",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPRequired, kindOf(t, err))

	// With a wrong OTP it is an OTP failure.
	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "Sup3rSecret",
		OTP:        "000000",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPInvalid, kindOf(t, err))

	output := loginAlice(t, h)

	// All three tokens are live: access verifies against its binding.
	userID, err := h.service.VerifyToken(context.Background(), output.Access.Token)
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	assert.Greater(t, output.Refresh.Expires, output.Access.Expires)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "not-the-password",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindIncorrectCredentials, kindOf(t, err))
}

func TestLogin_ProviderAccountHasNoPassword(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.users.Create(context.Background(), auth.CreateUserInput{
		Provider: "google",
		Email:    "bob@example.com",
		Username: "bob",
		Name:     "Bob",
	})
	require.NoError(t, err)

	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Credential: "bob",
		Password:   "whatever1A",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidProvider, kindOf(t, err))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)

	err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:    "other@example.com",
		Username: "alice",
		Name:     "Other",
		Password: "Sup3rSecret",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUniqueViolation, kindOf(t, err))
}

func TestRefresh_RotatesAccess(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	rotated, err := h.service.Refresh(context.Background(), output.Refresh.Token)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.Token)

	// The rotation revoked the previously issued access token.
	_, err = h.service.VerifyToken(context.Background(), output.Access.Token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, kindOf(t, err))

	// The fresh one verifies.
	_, err = h.service.VerifyToken(context.Background(), rotated.Token)
	require.NoError(t, err)
}

func TestLogout_RevokesRefresh(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	require.NoError(t, h.service.Logout(context.Background(), output.Refresh.Token))

	assert.Equal(t, 0, h.sessions.count())

	_, err := h.service.Refresh(context.Background(), output.Refresh.Token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, kindOf(t, err))
}

func TestLogin_SessionWriteFailureCompensates(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	h.sessions.failCreate = assert.AnError

	require.NoError(t, h.redis.Set(testSchema+":twofactor:otp:123456", "1"))
	output, err := h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "Sup3rSecret",
		OTP:        "123456",
	})
	require.NoError(t, err, "login returns before the session write")

	// The compensation deletes the refresh binding, so the token dies.
	require.Eventually(t, func() bool {
		_, verifyErr := h.service.Refresh(context.Background(), output.Refresh.Token)
		return verifyErr != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.sessions.count())
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	reauth, err := h.service.ReauthToken(context.Background(), output.Access.Token, "Sup3rSecret")
	require.NoError(t, err)

	err = h.service.ChangePassword(context.Background(), reauth.Token, "Sup3rSecret", "N3wSecretPw")
	require.NoError(t, err)

	assert.Equal(t, 0, h.sessions.count())
	_, err = h.service.VerifyToken(context.Background(), output.Access.Token)
	require.Error(t, err)

	// The new password logs in; the old one does not.
	require.NoError(t, h.redis.Set(testSchema+":twofactor:otp:123456", "1"))
	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Credential: "alice",
		Password:   "N3wSecretPw",
		OTP:        "123456",
	})
	require.NoError(t, err)
}

func TestReauthToken_WrongPassword(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	_, err := h.service.ReauthToken(context.Background(), output.Access.Token, "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindIncorrectCredentials, kindOf(t, err))
}

func TestEmailVerificationFlow(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)

	require.NoError(t, h.service.SendEmailVerification(context.Background(), "alice@example.com"))
	code := h.mail.lastCode("alice@example.com")
	require.Len(t, code, sec.OTPLength)

	require.NoError(t, h.service.VerifyEmailToken(context.Background(), "alice@example.com", code))

	user, err := h.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)

	// Codes are single-use: the consume deleted the binding.
	err = h.service.VerifyEmailToken(context.Background(), "alice@example.com", code)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPInvalid, kindOf(t, err))
}

func TestPasswordResetFlow(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	require.NoError(t, h.service.ForgotPassword(context.Background(), "alice@example.com"))
	code := h.mail.lastCode("alice@example.com")
	require.NotEmpty(t, code)

	// The verify step does not consume, so the reset can follow it.
	require.NoError(t, h.service.VerifyForgotPasswordToken(context.Background(), "alice@example.com", code))
	require.NoError(t, h.service.VerifyForgotPasswordToken(context.Background(), "alice@example.com", code))

	err := h.service.ResetPassword(context.Background(), "alice@example.com", code, "An0therSecret")
	require.NoError(t, err)

	// The reset revoked every live session.
	assert.Equal(t, 0, h.sessions.count())
	_, err = h.service.VerifyToken(context.Background(), output.Access.Token)
	require.Error(t, err)

	// The consumed code cannot reset again.
	err = h.service.ResetPassword(context.Background(), "alice@example.com", code, "YetAn0ther")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPInvalid, kindOf(t, err))
}

func TestChangeEmail_ClearsVerifiedFlag(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	user, err := h.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, h.users.SetEmailVerified(context.Background(), user.ID))

	reauth, err := h.service.ReauthToken(context.Background(), output.Access.Token, "Sup3rSecret")
	require.NoError(t, err)

	err = h.service.SendEmailVerificationForNewEmail(context.Background(), output.Access.Token, "new@example.com")
	require.NoError(t, err)
	code := h.mail.lastCode("new@example.com")
	require.NotEmpty(t, code)

	require.NoError(t, h.service.ChangeEmail(context.Background(), reauth.Token, "new@example.com", code))

	moved, err := h.users.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, moved.IsEmailVerified)
}

func TestDeleteAccount(t *testing.T) {
	h := newTestHarness(t)
	registerAlice(t, h)
	output := loginAlice(t, h)

	reauth, err := h.service.ReauthToken(context.Background(), output.Access.Token, "Sup3rSecret")
	require.NoError(t, err)

	require.NoError(t, h.service.Delete(context.Background(), reauth.Token))

	_, err = h.users.GetByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	assert.Equal(t, 0, h.sessions.count())
	_, err = h.service.VerifyToken(context.Background(), output.Access.Token)
	require.Error(t, err)
}

func TestRegister_Validation(t *testing.T) {
	h := newTestHarness(t)

	err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:    "not-an-email",
		Username: "Bad Name!",
		Name:     "x",
		Password: "short",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.KindValidation, appError.Kind)
	assert.NotEmpty(t, appError.Details)
}
