// Copyright (c) 2026 Torii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// HTTP delivery layer for the auth use cases.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON request parsing.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries; validation beyond
// JSON well-formedness lives in the service layer's validator chains.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/torii/internal/platform/request"
	"github.com/taibuivan/torii/internal/platform/respond"
)

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the auth routes, mounted
// under /api/v1/auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/reauth", handler.reauth)
	router.Post("/logout", handler.logout)
	router.Post("/delete", handler.delete)
	router.Post("/verify", handler.verifyToken)

	router.Post("/email/send-verification", handler.sendEmailVerification)
	router.Post("/email/send-verification-new", handler.sendEmailVerificationForNewEmail)
	router.Post("/email/verify", handler.verifyEmailToken)
	router.Post("/email/change", handler.changeEmail)

	router.Post("/password/forgot", handler.forgotPassword)
	router.Post("/password/verify", handler.verifyForgotPasswordToken)
	router.Post("/password/reset", handler.resetPassword)
	router.Post("/password/change", handler.changePassword)

	router.Post("/username/change", handler.changeUsername)

	return router
}

// register handles POST /api/v1/auth/register.
//
// # Returns
//   - Writes HTTP 201 Created on success.
//   - Writes HTTP 412 Precondition Failed if validation rules fail.
//   - Writes HTTP 409 Conflict if email/username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Register(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"status": "registered"})
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Credential string `json:"credential"` // Can be Username or Email
	Password   string `json:"password"`
	OTP        string `json:"otp,omitempty"`
}

// login handles POST /api/v1/auth/login.
//
// # Returns
//   - Writes HTTP 200 OK with the refresh/access/session token items.
//   - Writes HTTP 403 Forbidden for bad credentials.
//   - Writes HTTP 412 Precondition Failed when two-factor requires an OTP.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// The session row write happens in a detached task; the response never
	// waits on it.
	output, err := handler.authService.Login(request.Context(), LoginInput{
		Credential: input.Credential,
		Password:   input.Password,
		OTP:        input.OTP,
		IPAddress:  requestutil.ClientIP(request),
		UserAgent:  requestutil.UserAgent(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, output)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refresh handles POST /api/v1/auth/refresh: access-token rotation under a
// live refresh binding.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

type reauthRequest struct {
	AccessToken string `json:"access_token"`
	Password    string `json:"password"`
}

// reauth handles POST /api/v1/auth/reauth: exchanges an access token plus the
// password for a short-lived reauth credential.
func (handler *Handler) reauth(writer http.ResponseWriter, request *http.Request) {
	var input reauthRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.authService.ReauthToken(request.Context(), input.AccessToken, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

// logout handles POST /api/v1/auth/logout.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type reauthTokenRequest struct {
	ReauthToken string `json:"reauth_token"`
}

// delete handles POST /api/v1/auth/delete: account destruction gated on a
// reauth token.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	var input reauthTokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Delete(request.Context(), input.ReauthToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type accessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

// verifyToken handles POST /api/v1/auth/verify: signature plus cache-binding
// verification of an access token.
func (handler *Handler) verifyToken(writer http.ResponseWriter, request *http.Request) {
	var input accessTokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := handler.authService.VerifyToken(request.Context(), input.AccessToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"user_id": userID})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (handler *Handler) sendEmailVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SendEmailVerification(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type newEmailRequest struct {
	AccessToken string `json:"access_token"`
	NewEmail    string `json:"new_email"`
}

func (handler *Handler) sendEmailVerificationForNewEmail(writer http.ResponseWriter, request *http.Request) {
	var input newEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.SendEmailVerificationForNewEmail(request.Context(), input.AccessToken, input.NewEmail)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type emailCodeRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (handler *Handler) verifyEmailToken(writer http.ResponseWriter, request *http.Request) {
	var input emailCodeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyEmailToken(request.Context(), input.Email, input.OTP); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type changeEmailRequest struct {
	ReauthToken string `json:"reauth_token"`
	NewEmail    string `json:"new_email"`
	OTP         string `json:"otp"`
}

func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	var input changeEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ChangeEmail(request.Context(), input.ReauthToken, input.NewEmail, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) verifyForgotPasswordToken(writer http.ResponseWriter, request *http.Request) {
	var input emailCodeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.VerifyForgotPasswordToken(request.Context(), input.Email, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), input.Email, input.OTP, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type changePasswordRequest struct {
	ReauthToken     string `json:"reauth_token"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ChangePassword(
		request.Context(),
		input.ReauthToken,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type changeUsernameRequest struct {
	ReauthToken string `json:"reauth_token"`
	NewUsername string `json:"new_username"`
}

func (handler *Handler) changeUsername(writer http.ResponseWriter, request *http.Request) {
	var input changeUsernameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ChangeUsername(request.Context(), input.ReauthToken, input.NewUsername)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
