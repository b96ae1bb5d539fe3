package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/session"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired")
)

type AuthService struct {
	users    user.Repository
	sessions session.Repository
}

func NewAuthService(users user.Repository, sessions session.Repository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Authorize resolves a session token into its user. Expired sessions are
// deleted on sight.
func (s *AuthService) Authorize(ctx context.Context, token string) (*user.User, *session.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if sess.Expired() {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil, ErrSessionExpired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*user.User, *session.Session, error) {
	logger := configuration.Use().Logger()

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.WithField("email", email).Warnf("authentication failed: %v", err)
		return nil, nil, ErrInvalidCredentials
	}
	if !u.CheckPassword(password) {
		logger.WithField("email", email).Warn("authentication failed: bad password")
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.newSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// CookieAuthenticate authenticates and sets the sid cookie on the response
// writer carried by the request context.
func (s *AuthService) CookieAuthenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, sess, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	w, ok := composables.UseWriter(ctx)
	if !ok {
		return nil, errors.New("response writer not found in context")
	}
	http.SetCookie(w, s.Cookie(sess))
	return u, nil
}

// Cookie builds the sid cookie carrying the session token.
func (s *AuthService) Cookie(sess *session.Session) *http.Cookie {
	conf := configuration.Use()
	domain := ""
	if conf.GoAppEnvironment == configuration.Production {
		domain = conf.Domain
	}
	return &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.GoAppEnvironment == configuration.Production,
		Domain:   domain,
		Path:     "/",
	}
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.sessions.Delete(txCtx, token)
	})
}

func (s *AuthService) newSessionToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *AuthService) newSession(ctx context.Context, u *user.User) (*session.Session, error) {
	conf := configuration.Use()

	ip, ok := composables.UseIP(ctx)
	if !ok {
		ip = "0.0.0.0"
	}
	userAgent, ok := composables.UseUserAgent(ctx)
	if !ok {
		userAgent = "Unknown"
	}

	token, err := s.newSessionToken()
	if err != nil {
		return nil, err
	}

	dto := &session.CreateDTO{
		Token:     token,
		UserID:    u.ID(),
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(conf.SessionDuration),
	}
	sess := dto.ToEntity()

	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.sessions.Create(txCtx, sess)
	}); err != nil {
		return nil, err
	}
	return sess, nil
}
