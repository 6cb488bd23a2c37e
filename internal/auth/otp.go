// AngelaMos | 2026
// otp.go

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/mail"
)

const otpDigits = 6

// OTPStore persists the hashed code; issuing overwrites any pending one.
type OTPStore interface {
	SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error
}

type OTPIssuer struct {
	store  OTPStore
	sender mail.Sender
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewOTPIssuer(
	store OTPStore,
	sender mail.Sender,
	ttl time.Duration,
	logger *slog.Logger,
) *OTPIssuer {
	return &OTPIssuer{
		store:  store,
		sender: sender,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue stores a fresh code for the user and mails it. Delivery failures are
// logged and do not fail the call; the code stays valid for a resend.
func (i *OTPIssuer) Issue(ctx context.Context, userID, email string) error {
	code, err := core.GenerateNumericCode(otpDigits)
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	hash, err := core.HashSecret(code)
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	if err := i.store.SetOTP(ctx, userID, hash, i.now().Add(i.ttl)); err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	msg := mail.Message{
		To:      email,
		Subject: "Your login code",
		Body: fmt.Sprintf(
			"Your one-time login code is %s. It expires in %d minutes.",
			code,
			int(i.ttl.Minutes()),
		),
	}
	if err := i.sender.Send(ctx, msg); err != nil {
		i.logger.WarnContext(ctx, "otp delivery failed",
			"user_id", userID,
			"error", err,
		)
	}

	return nil
}
