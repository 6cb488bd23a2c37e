// AngelaMos | 2026
// session.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/config"
	"github.com/finyara/leadflow/internal/core"
)

const sessionTokenType = "session"

// SessionManager mints and parses HS256 session tokens.
type SessionManager struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type SessionToken struct {
	ID        string
	UserID    string
	Role      access.Role
	ExpiresAt time.Time
}

func NewSessionManager(cfg config.SessionConfig) (*SessionManager, error) {
	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session secret: %w", err)
	}

	return &SessionManager{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Issue(userID string, role access.Role) (string, *SessionToken, error) {
	now := m.now()
	session := &SessionToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: now.Add(m.ttl),
	}

	token, err := jwt.NewBuilder().
		JwtID(session.ID).
		Issuer(m.issuer).
		Subject(userID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(session.ExpiresAt).
		Claim("role", string(role)).
		Claim("type", sessionTokenType).
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), session, nil
}

func (m *SessionManager) Parse(tokenString string) (*SessionToken, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("parse session: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse session: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != sessionTokenType {
		return nil, fmt.Errorf("parse session: wrong token type: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("parse session: missing subject: %w", core.ErrTokenInvalid)
	}

	jti, ok := token.JwtID()
	if !ok || jti == "" {
		return nil, fmt.Errorf("parse session: missing jti: %w", core.ErrTokenInvalid)
	}

	var role string
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf("parse session: missing role: %w", core.ErrTokenInvalid)
	}

	exp, _ := token.Expiration()

	return &SessionToken{
		ID:        jti,
		UserID:    subject,
		Role:      access.Role(role),
		ExpiresAt: exp,
	}, nil
}

func isTokenExpiredError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
