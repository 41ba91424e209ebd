package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/internal/notify"
	"github.com/nayeemhasan/glamspot-backend/pkg/auth"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

const (
	codeLength      = 6
	codeSpace       = 1000000
	issueRateLimit  = 5
	issueRateWindow = 15 * time.Minute
)

// Service issues and verifies one-time confirmation codes.
type Service interface {
	Issue(ctx context.Context, subject string) error
	Verify(ctx context.Context, subject, code string) (string, error)
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams configure the otp service.
type ServiceParams struct {
	Repo    Repository
	Sender  notify.Sender
	Limiter rateLimiter
	Logger  *logger.Logger
	JWT     config.JWTConfig
	OTP     config.OTPConfig
}

type service struct {
	repo    Repository
	sender  notify.Sender
	limiter rateLimiter
	logg    *logger.Logger
	jwtCfg  config.JWTConfig
	otpCfg  config.OTPConfig
	now     func() time.Time
}

// NewService wires otp dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("otp repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("notify sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := params.OTP
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &service{
		repo:    params.Repo,
		sender:  params.Sender,
		limiter: params.Limiter,
		logg:    params.Logger,
		jwtCfg:  params.JWT,
		otpCfg:  cfg,
		now:     time.Now,
	}, nil
}

// Issue generates a fresh code for the subject, replacing any outstanding one,
// and dispatches it by email. Delivery failures are logged, not returned: the
// caller's flow must not break because an email bounced.
func (s *service) Issue(ctx context.Context, subject string) error {
	subject = normalizeSubject(subject)
	if subject == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject email required")
	}

	if s.limiter != nil {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "otp:"+subject, issueRateLimit, issueRateWindow)
		if err != nil {
			s.logg.Error(ctx, "otp rate limit check failed", err)
		} else if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many code requests")
		}
	}

	code, err := generateCode()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	now := s.now().UTC()
	challenge := &models.OtpChallenge{
		ID:        uuid.New(),
		Subject:   subject,
		Code:      code,
		ExpiresAt: now.Add(s.otpCfg.TTL),
	}
	if err := s.repo.Upsert(ctx, challenge); err != nil {
		return err
	}

	msg := notify.OTPMessage(subject, code, int(s.otpCfg.TTL.Minutes()))
	if sendErr := s.sender.Send(ctx, msg); sendErr != nil {
		s.logg.Error(s.logg.WithField(ctx, "subject", subject), "otp email delivery failed", sendErr)
	}
	return nil
}

// Verify checks the submitted code against the outstanding challenge. Success
// deletes the challenge (single use) and returns a signed confirmation token.
func (s *service) Verify(ctx context.Context, subject, code string) (string, error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "subject email required")
	}
	code = strings.TrimSpace(code)
	if len(code) != codeLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}

	challenge, err := s.repo.FindBySubject(ctx, subject)
	if err != nil {
		return "", err
	}

	// An expired code is a distinct outcome from a mismatch: the caller should
	// request a fresh one rather than retype.
	now := s.now().UTC()
	if now.After(challenge.ExpiresAt) {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "code expired")
	}
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}

	if err := s.repo.DeleteBySubject(ctx, subject); err != nil {
		return "", err
	}

	token, err := auth.MintConfirmationToken(s.jwtCfg, now, subject, s.otpCfg.ConfirmationTTL())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint confirmation token")
	}
	return token, nil
}

// generateCode draws a uniform 6-digit zero-padded code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
