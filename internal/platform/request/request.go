// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/torii/internal/platform/ctxutil"
	"github.com/taibuivan/torii/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ClientIP returns the resolved client address injected by the middleware chain.
*/
func ClientIP(request *http.Request) string {
	return ctxutil.GetClientIP(request.Context())
}

/*
UserAgent returns the raw User-Agent header for session enrichment.
*/
func UserAgent(request *http.Request) string {
	return request.UserAgent()
}
