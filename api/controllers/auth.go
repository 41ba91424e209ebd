package controllers

import (
	"net/http"

	"github.com/nayeemhasan/glamspot-backend/api/responses"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// SendOTP emails a one-time confirmation code to the given address.
func SendOTP(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Issue(r.Context(), req.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// VerifyOTP exchanges a valid code for a short-lived confirmation token.
func VerifyOTP(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyOTPRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.Verify(r.Context(), req.Email, req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"confirmation_token": token})
	}
}
