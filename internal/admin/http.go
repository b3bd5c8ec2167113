// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/torii/internal/platform/request"
	"github.com/taibuivan/torii/internal/platform/respond"
)

// Handler implements the operator HTTP endpoints, mounted under
// /api/v1/admin.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns a [chi.Router] configured with the admin routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/email/send", handler.sendEmail)
	router.Post("/create", handler.createAdmin)
	router.Post("/delete", handler.deleteAdmin)
	router.Post("/api-keys/list", handler.listApiKeys)
	router.Post("/api-keys/create", handler.createApiKey)
	router.Post("/api-keys/delete", handler.deleteApiKey)

	return router
}

type sendEmailRequest struct {
	Email string `json:"email"`
}

// sendEmail handles POST /api/v1/admin/email/send: issues the one-hour OTP
// that gates every other admin operation.
func (handler *Handler) sendEmail(writer http.ResponseWriter, request *http.Request) {
	var input sendEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.SendEmail(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type createAdminRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	Description string `json:"description"`
}

// createAdmin handles POST /api/v1/admin/create.
func (handler *Handler) createAdmin(writer http.ResponseWriter, request *http.Request) {
	var input createAdminRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.adminService.CreateAdmin(request.Context(), input.Email, input.OTP, input.Description)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

type adminOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// deleteAdmin handles POST /api/v1/admin/delete.
func (handler *Handler) deleteAdmin(writer http.ResponseWriter, request *http.Request) {
	var input adminOTPRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.DeleteAdmin(request.Context(), input.Email, input.OTP); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// listApiKeys handles POST /api/v1/admin/api-keys/list.
func (handler *Handler) listApiKeys(writer http.ResponseWriter, request *http.Request) {
	var input adminOTPRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	keys, err := handler.adminService.ListApiKeys(request.Context(), input.Email, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, keys)
}

type createApiKeyRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	Description string `json:"description"`
}

// createApiKey handles POST /api/v1/admin/api-keys/create. The api_secret in
// the response is the only time the cleartext is ever revealed.
func (handler *Handler) createApiKey(writer http.ResponseWriter, request *http.Request) {
	var input createApiKeyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	apiKey, apiSecret, err := handler.adminService.CreateApiKey(
		request.Context(),
		input.Email,
		input.OTP,
		input.Description,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{
		"api_key":    apiKey,
		"api_secret": apiSecret,
	})
}

type deleteApiKeyRequest struct {
	Email  string `json:"email"`
	OTP    string `json:"otp"`
	APIKey string `json:"api_key"`
}

// deleteApiKey handles POST /api/v1/admin/api-keys/delete.
func (handler *Handler) deleteApiKey(writer http.ResponseWriter, request *http.Request) {
	var input deleteApiKeyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.adminService.DeleteApiKey(request.Context(), input.Email, input.OTP, input.APIKey)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
