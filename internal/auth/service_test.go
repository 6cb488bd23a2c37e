// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/config"
	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/mail"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newFakeUsers(users ...*UserInfo) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*UserInfo)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByIdentity(_ context.Context, email, userName string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if (email != "" && u.Email == email) || (email == "" && u.UserName == userName) {
			c := *u
			return &c, nil
		}
	}
	return nil, core.NotFoundError("user")
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.NotFoundError("user")
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetOTP(_ context.Context, userID, otpHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.OTPHash = &otpHash
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (f *fakeUsers) ConsumeOTP(_ context.Context, userID, otpHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	if u.OTPHash == nil || *u.OTPHash != otpHash {
		return false, nil
	}
	u.OTPHash = nil
	u.OTPExpiresAt = nil
	u.IsVerified = true
	return true, nil
}

func (f *fakeUsers) pendingHash(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].OTPHash
}

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (c *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	code := codePattern.FindString(c.sent[len(c.sent)-1].Body)
	require.Len(t, code, 6)
	return code
}

type fixture struct {
	svc    *Service
	users  *fakeUsers
	sender *captureSender
	issuer *OTPIssuer
	mr     *miniredis.Miniredis
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newFakeUsers(&UserInfo{
		ID:       "u1",
		UserName: "tele1",
		Email:    "tele1@example.com",
		Role:     access.RoleTelecaller,
		IsActive: true,
		Status:   StatusActive,
	})

	sender := &captureSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := NewOTPIssuer(users, sender, 10*time.Minute, logger)

	sessions, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		TTL:    7 * 24 * time.Hour,
		Issuer: "leadflow-test",
	})
	require.NoError(t, err)

	svc := NewService(users, issuer, sessions, core.NewFlagStore(rdb, "session:revoked:"))

	return &fixture{svc: svc, users: users, sender: sender, issuer: issuer, mr: mr}
}

func (f *fixture) setNow(now time.Time) {
	f.issuer.now = func() time.Time { return now }
	f.svc.now = func() time.Time { return now }
	f.svc.sessions.now = func() time.Time { return now }
}

var byEmail = Identity{Email: "tele1@example.com"}

func TestVerifyOTPSucceedsOnceAndReturnsSanitizedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, byEmail))
	code := f.sender.lastCode(t)

	res, err := f.svc.VerifyOTP(ctx, byEmail, code)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.True(t, res.User.IsVerified)
	require.Nil(t, res.User.OTPHash)
	require.Nil(t, res.User.OTPExpiresAt)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), res.ExpiresAt, time.Minute)

	raw, err := json.Marshal(ToSessionUser(res.User))
	require.NoError(t, err)
	require.NotContains(t, strings.ToLower(string(raw)), "otp")

	_, err = f.svc.VerifyOTP(ctx, byEmail, code)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestVerifyOTPByUserName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, Identity{UserName: "tele1"}))
	_, err := f.svc.VerifyOTP(ctx, Identity{UserName: "tele1"}, f.sender.lastCode(t))
	require.NoError(t, err)
}

func TestVerifyOTPMismatchLeavesCodePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, byEmail))
	code := f.sender.lastCode(t)
	before := f.users.pendingHash("u1")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err := f.svc.VerifyOTP(ctx, byEmail, wrong)
	require.ErrorIs(t, err, ErrInvalidOTP)
	require.Equal(t, before, f.users.pendingHash("u1"))

	_, err = f.svc.VerifyOTP(ctx, byEmail, code)
	require.NoError(t, err)
}

func TestVerifyOTPExpiry(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("expired after eleven minutes", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.setNow(t0)
		require.NoError(t, f.svc.SendOTP(ctx, byEmail))
		code := f.sender.lastCode(t)

		f.setNow(t0.Add(11 * time.Minute))
		_, err := f.svc.VerifyOTP(ctx, byEmail, code)
		require.ErrorIs(t, err, core.ErrForbidden)
		require.NotNil(t, f.users.pendingHash("u1"), "code is kept after a failed attempt")
	})

	t.Run("valid at exactly the expiry instant", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.setNow(t0)
		require.NoError(t, f.svc.SendOTP(ctx, byEmail))
		code := f.sender.lastCode(t)

		f.setNow(t0.Add(10 * time.Minute))
		_, err := f.svc.VerifyOTP(ctx, byEmail, code)
		require.NoError(t, err)
	})
}

func TestReissueOverwritesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, byEmail))
	first := f.sender.lastCode(t)
	require.NoError(t, f.svc.SendOTP(ctx, byEmail))
	second := f.sender.lastCode(t)

	if first != second {
		_, err := f.svc.VerifyOTP(ctx, byEmail, first)
		require.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err := f.svc.VerifyOTP(ctx, byEmail, second)
	require.NoError(t, err)
}

func TestVerifyOTPFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifyOTP(ctx, Identity{Email: "ghost@example.com"}, "123456")
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.VerifyOTP(ctx, byEmail, "123456")
	require.ErrorIs(t, err, ErrInvalidOTP, "no pending code")

	f.users.users["u1"].IsActive = false
	err = f.svc.SendOTP(ctx, byEmail)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestMailFailureDoesNotFailIssue(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("smtp down")

	require.NoError(t, f.svc.SendOTP(context.Background(), byEmail))
	require.NotNil(t, f.users.pendingHash("u1"))
}

func TestVerifySessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, byEmail))
	res, err := f.svc.VerifyOTP(ctx, byEmail, f.sender.lastCode(t))
	require.NoError(t, err)

	claims, err := f.svc.VerifySession(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, access.RoleTelecaller, claims.Role)

	f.users.users["u1"].Role = access.RoleBackend
	claims, err = f.svc.VerifySession(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, access.RoleBackend, claims.Role, "role is read fresh")

	require.NoError(t, f.svc.Logout(ctx, claims))
	require.True(t, f.mr.Exists("session:revoked:"+claims.SessionID))

	_, err = f.svc.VerifySession(ctx, res.Token)
	require.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestVerifySessionRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifySession(ctx, "not-a-jwt")
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	token, _, err := f.svc.sessions.Issue("u1", access.RoleTelecaller)
	require.NoError(t, err)

	f.users.users["u1"].Status = "INACTIVE"
	_, err = f.svc.VerifySession(ctx, token)
	require.ErrorIs(t, err, core.ErrForbidden)

	ghost, _, err := f.svc.sessions.Issue("ghost", access.RoleAdmin)
	require.NoError(t, err)
	_, err = f.svc.VerifySession(ctx, ghost)
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	other, err := NewSessionManager(config.SessionConfig{
		Secret: strings.Repeat("x", 32),
		TTL:    time.Hour,
		Issuer: "leadflow-test",
	})
	require.NoError(t, err)
	forged, _, err := other.Issue("u1", access.RoleAdmin)
	require.NoError(t, err)
	_, err = f.svc.VerifySession(ctx, forged)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t)
	t0 := time.Now().Add(-8 * 24 * time.Hour)

	f.svc.sessions.now = func() time.Time { return t0 }
	token, _, err := f.svc.sessions.Issue("u1", access.RoleTelecaller)
	require.NoError(t, err)

	f.svc.sessions.now = time.Now
	_, err = f.svc.sessions.Parse(token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyOTPHandlerSetsCookie(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SendOTP(context.Background(), byEmail))
	code := f.sender.lastCode(t)

	h := NewHandler(f.svc, HandlerConfig{CookieName: "token", SecureCookie: true})

	body := strings.NewReader(`{"email":"tele1@example.com","otp":"` + code + `"}`)
	rec := httptest.NewRecorder()
	h.VerifyOTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/verify-otp", body))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "token", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)

	var env struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.True(t, env.Success)
	require.Equal(t, "u1", env.Data.User.ID)
}

func TestSendOTPHandlerValidation(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, HandlerConfig{CookieName: "token"})

	for _, payload := range []string{`{}`, `{"email":"nope"}`, `not json`} {
		rec := httptest.NewRecorder()
		h.SendOTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/send-otp", strings.NewReader(payload)))
		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}

	rec := httptest.NewRecorder()
	h.SendOTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/send-otp",
		strings.NewReader(`{"email":"ghost@example.com"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
