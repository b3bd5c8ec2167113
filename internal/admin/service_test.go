// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/torii/internal/admin"
	"github.com/taibuivan/torii/internal/platform/apperr"
	"github.com/taibuivan/torii/internal/platform/config"
	"github.com/taibuivan/torii/internal/platform/sec"
	"github.com/taibuivan/torii/internal/platform/state"
	"github.com/taibuivan/torii/pkg/clock"
	"github.com/taibuivan/torii/pkg/ulid"
)

const testSchema = "torii"

// fakeStore keeps admins and keys in memory with the cascade and uniqueness
// rules of the PostgreSQL implementation.
type fakeStore struct {
	mu     sync.Mutex
	admins map[string]*admin.Admin // keyed by email
	keys   map[string]admin.APIKey // keyed by id; hashes held separately
	hashes map[string]string       // key id -> bcrypt hash
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins: map[string]*admin.Admin{},
		keys:   map[string]admin.APIKey{},
		hashes: map[string]string{},
	}
}

func (store *fakeStore) CreateAdmin(_ context.Context, email, description string) (*admin.Admin, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.admins[email]; ok {
		return nil, apperr.UniqueViolation("Resource already exists", nil)
	}
	created := &admin.Admin{ID: ulid.New(), Email: email, Description: description}
	store.admins[email] = created
	return created, nil
}

func (store *fakeStore) DeleteAdmin(_ context.Context, email string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.admins[email]; !ok {
		return apperr.NotFound("Admin not found")
	}
	delete(store.admins, email)
	for id, key := range store.keys {
		if key.OwnedBy == email {
			delete(store.keys, id)
			delete(store.hashes, id)
		}
	}
	return nil
}

func (store *fakeStore) ListAPIKeys(_ context.Context, ownerEmail string) ([]admin.APIKey, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var keys []admin.APIKey
	for _, key := range store.keys {
		if key.OwnedBy == ownerEmail {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (store *fakeStore) CreateAPIKey(_ context.Context, ownerEmail, description, secretHash string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.admins[ownerEmail]; !ok {
		return "", apperr.NotFound("Admin not found")
	}
	id := ulid.New()
	store.keys[id] = admin.APIKey{
		ID:          id,
		Description: description,
		OwnedBy:     ownerEmail,
		CreatedAt:   clock.Now(),
	}
	store.hashes[id] = secretHash
	return id, nil
}

func (store *fakeStore) DeleteAPIKey(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.keys[id]; !ok {
		return apperr.NotFound("API key not found")
	}
	delete(store.keys, id)
	delete(store.hashes, id)
	return nil
}

// recordingMailer captures every OTP email instead of sending it.
type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *recordingMailer) SendOTP(_ context.Context, recipient, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[recipient] = code
	return nil
}

func (m *recordingMailer) lastCode(recipient string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[recipient]
}

func newTestService(t *testing.T) (*admin.Service, *fakeStore, *recordingMailer, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore()
	mail := &recordingMailer{}
	st := state.New(nil, client, &config.Config{RedisSchema: testSchema})

	return admin.NewService(store, st, mail), store, mail, server
}

// requestOTP runs SendEmail and returns the code it stored and mailed.
func requestOTP(t *testing.T, service *admin.Service, mail *recordingMailer, email string) string {
	t.Helper()
	require.NoError(t, service.SendEmail(context.Background(), email))
	code := mail.lastCode(email)
	require.Len(t, code, sec.OTPLength)
	return code
}

func TestSendEmail_SeedsOneHourOTP(t *testing.T) {
	service, _, mail, server := newTestService(t)

	code := requestOTP(t, service, mail, "op@x.co")

	key := testSchema + ":admin:verification:op@x.co"
	stored, err := server.Get(key)
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	assert.InDelta(t, time.Hour.Seconds(), server.TTL(key).Seconds(), 1)
}

func TestCreateAdmin_ConsumesOTP(t *testing.T) {
	service, store, mail, server := newTestService(t)

	code := requestOTP(t, service, mail, "op@x.co")

	created, err := service.CreateAdmin(context.Background(), "op@x.co", code, "ops")
	require.NoError(t, err)
	assert.Len(t, created.ID, 26)
	assert.Equal(t, "op@x.co", created.Email)
	require.NotNil(t, store.admins["op@x.co"])

	// The consume deleted the binding; replaying the same code fails.
	assert.False(t, server.Exists(testSchema+":admin:verification:op@x.co"))
	_, err = service.CreateAdmin(context.Background(), "op@x.co", code, "ops")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPInvalid, apperr.As(err).Kind)
}

func TestCreateAdmin_WrongOTP(t *testing.T) {
	service, _, mail, _ := newTestService(t)

	requestOTP(t, service, mail, "op@x.co")

	_, err := service.CreateAdmin(context.Background(), "op@x.co", "000000", "ops")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOTPInvalid, apperr.As(err).Kind)
}

func TestApiKeyLifecycle(t *testing.T) {
	service, store, mail, _ := newTestService(t)
	ctx := context.Background()

	code := requestOTP(t, service, mail, "op@x.co")
	_, err := service.CreateAdmin(ctx, "op@x.co", code, "ops")
	require.NoError(t, err)

	code = requestOTP(t, service, mail, "op@x.co")
	apiKey, apiSecret, err := service.CreateApiKey(ctx, "op@x.co", code, "ci runner")
	require.NoError(t, err)

	// The identifier is the row ULID; the secret is prefixed cleartext
	// returned exactly once and stored only as a hash.
	assert.Len(t, apiKey, 26)
	assert.True(t, strings.HasPrefix(apiSecret, "au_"))
	hash := store.hashes[apiKey]
	require.NotEmpty(t, hash)
	assert.NotEqual(t, apiSecret, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiSecret)))

	code = requestOTP(t, service, mail, "op@x.co")
	keys, err := service.ListApiKeys(ctx, "op@x.co", code)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, apiKey, keys[0].ID)
	assert.Equal(t, "op@x.co", keys[0].OwnedBy)

	code = requestOTP(t, service, mail, "op@x.co")
	require.NoError(t, service.DeleteApiKey(ctx, "op@x.co", code, apiKey))
	assert.Empty(t, store.keys)
}

func TestDeleteAdmin_CascadesKeys(t *testing.T) {
	service, store, mail, _ := newTestService(t)
	ctx := context.Background()

	code := requestOTP(t, service, mail, "op@x.co")
	_, err := service.CreateAdmin(ctx, "op@x.co", code, "ops")
	require.NoError(t, err)

	code = requestOTP(t, service, mail, "op@x.co")
	_, _, err = service.CreateApiKey(ctx, "op@x.co", code, "ci runner")
	require.NoError(t, err)

	code = requestOTP(t, service, mail, "op@x.co")
	require.NoError(t, service.DeleteAdmin(ctx, "op@x.co", code))

	assert.Empty(t, store.admins)
	assert.Empty(t, store.keys)
}

func TestCreateApiKey_UnknownAdmin(t *testing.T) {
	service, _, mail, _ := newTestService(t)

	code := requestOTP(t, service, mail, "ghost@x.co")
	_, _, err := service.CreateApiKey(context.Background(), "ghost@x.co", code, "ci")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.As(err).Kind)
}
