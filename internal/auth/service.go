// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/middleware"
)

var (
	ErrInvalidOTP = core.NewAppError(
		core.ErrForbidden,
		"invalid or expired OTP",
		http.StatusForbidden,
		"INVALID_OTP",
	)
	ErrAccountInactive = core.NewAppError(
		core.ErrForbidden,
		"account is inactive",
		http.StatusForbidden,
		"ACCOUNT_INACTIVE",
	)
)

type UserProvider interface {
	GetByIdentity(ctx context.Context, email, userName string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	// ConsumeOTP clears the code only if it still equals otpHash, so a code
	// can be redeemed at most once.
	ConsumeOTP(ctx context.Context, userID, otpHash string) (bool, error)
}

type RevocationStore interface {
	Set(ctx context.Context, key string, ttl time.Duration) error
	IsSet(ctx context.Context, key string) (bool, error)
}

type Service struct {
	users    UserProvider
	otp      *OTPIssuer
	sessions *SessionManager
	revoked  RevocationStore
	now      func() time.Time
}

func NewService(
	users UserProvider,
	otp *OTPIssuer,
	sessions *SessionManager,
	revoked RevocationStore,
) *Service {
	return &Service{
		users:    users,
		otp:      otp,
		sessions: sessions,
		revoked:  revoked,
		now:      time.Now,
	}
}

func (s *Service) SendOTP(ctx context.Context, id Identity) error {
	user, err := s.users.GetByIdentity(ctx, id.Email, id.UserName)
	if err != nil {
		return err
	}

	if !user.CanSignIn() {
		return ErrAccountInactive
	}

	return s.otp.Issue(ctx, user.ID, user.Email)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *UserInfo
}

func (s *Service) VerifyOTP(
	ctx context.Context,
	id Identity,
	code string,
) (*LoginResult, error) {
	user, err := s.users.GetByIdentity(ctx, id.Email, id.UserName)
	if err != nil {
		return nil, err
	}

	if !user.CanSignIn() {
		return nil, ErrAccountInactive
	}

	if !user.HasPendingOTP() || s.now().After(*user.OTPExpiresAt) {
		return nil, ErrInvalidOTP
	}

	match, err := core.VerifySecret(code, *user.OTPHash)
	if err != nil || !match {
		return nil, ErrInvalidOTP
	}

	consumed, err := s.users.ConsumeOTP(ctx, user.ID, *user.OTPHash)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidOTP
	}

	token, session, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	user.OTPHash = nil
	user.OTPExpiresAt = nil
	user.IsVerified = true

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// VerifySession implements middleware.SessionVerifier. The role is re-read
// from the user record so demotions and deactivation apply immediately.
func (s *Service) VerifySession(
	ctx context.Context,
	token string,
) (*middleware.SessionClaims, error) {
	session, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsSet(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	if !user.CanSignIn() {
		return nil, ErrAccountInactive
	}

	return &middleware.SessionClaims{
		UserID:    user.ID,
		Role:      user.Role,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, claims *middleware.SessionClaims) error {
	if claims == nil || claims.SessionID == "" {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.revoked.Set(ctx, claims.SessionID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserInfo, error) {
	if userID == "" {
		return nil, fmt.Errorf("current user: %w", core.ErrUnauthorized)
	}
	return s.users.GetByID(ctx, userID)
}

var _ middleware.SessionVerifier = (*Service)(nil)
