// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/torii/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_ClientIP verifies that the resolved client address round-trips.
*/
func TestContext_ClientIP(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetClientIP(ctx))

	ctx = ctxutil.WithClientIP(ctx, "203.0.113.10")
	assert.Equal(t, "203.0.113.10", ctxutil.GetClientIP(ctx))
}
