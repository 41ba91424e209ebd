package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// ConfirmationClaims is the short-lived proof minted after a successful
// one-time-code verification.
type ConfirmationClaims struct {
	Subject string `json:"sub_email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// PurposeOTPConfirmation marks tokens minted by the verify-code flow.
const PurposeOTPConfirmation = "otp_confirmation"
