package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type sessionUpstream interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// SessionService manages the upstream token pair for a request. Tokens are
// issued and verified by the upstream API; this side only decodes claims to
// read the subject, role and expiry.
type SessionService struct {
	upstream      sessionUpstream
	validator     *validator.Validate
	logger        *zap.Logger
	refreshLeeway time.Duration
	parser        *jwt.Parser
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(upstream sessionUpstream, validate *validator.Validate, logger *zap.Logger, refreshLeeway time.Duration) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{
		upstream:      upstream,
		validator:     validate,
		logger:        logger,
		refreshLeeway: refreshLeeway,
		parser:        jwt.NewParser(),
	}
}

// Login exchanges credentials for a session.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	pair, err := s.upstream.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	session, err := s.NewSession(pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", session.UserID()), zap.String("role", session.Role()))
	return session, nil
}

// Logout ends a session. Tokens are not tracked server side, so the only
// work is the audit trail; the client discards its token pair.
func (s *SessionService) Logout(session *models.Session) {
	s.logger.Info("user logged out", zap.String("user_id", session.UserID()), zap.String("role", session.Role()))
}

// NewSession decodes the access token claims and builds a session.
func (s *SessionService) NewSession(accessToken, refreshToken string) (*models.Session, error) {
	claims, err := s.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Claims:       claims,
	}, nil
}

// Decode extracts claims from an access token without signature verification.
// The upstream API is the signing authority and verifies on every call.
func (s *SessionService) Decode(accessToken string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if _, _, err := s.parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed access token")
	}
	return claims, nil
}

// TokenSource wraps a session in a per-request token source with proactive
// refresh and 401-driven refresh.
func (s *SessionService) TokenSource(session *models.Session) *RequestTokenSource {
	return &RequestTokenSource{svc: s, session: session}
}

var _ upstream.TokenSource = (*RequestTokenSource)(nil)

// RequestTokenSource supplies bearer tokens for upstream calls made while
// serving one request. It refreshes the access token when it is about to
// expire and records the rotation so the handler can hand the fresh token
// back to the caller.
type RequestTokenSource struct {
	mu      sync.Mutex
	svc     *SessionService
	session *models.Session
	rotated string
}

// AccessToken returns a token expected to survive the upstream call,
// refreshing first when expiry falls inside the configured leeway.
func (t *RequestTokenSource) AccessToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.expiringSoon() {
		if err := t.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return t.session.AccessToken, nil
}

// Refresh forces a token refresh, used after the upstream answered 401.
func (t *RequestTokenSource) Refresh(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.refreshLocked(ctx); err != nil {
		return "", err
	}
	return t.session.AccessToken, nil
}

// RotatedToken returns the refreshed access token, or empty when the original
// token was used throughout.
func (t *RequestTokenSource) RotatedToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotated
}

// Session returns the current session state.
func (t *RequestTokenSource) Session() *models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

func (t *RequestTokenSource) expiringSoon() bool {
	claims := t.session.Claims
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < t.svc.refreshLeeway
}

func (t *RequestTokenSource) refreshLocked(ctx context.Context) error {
	if t.session.RefreshToken == "" {
		return appErrors.Clone(appErrors.ErrSessionExpired, "no refresh token")
	}

	pair, err := t.svc.upstream.RefreshToken(ctx, t.session.RefreshToken)
	if err != nil {
		return err
	}

	claims, err := t.svc.Decode(pair.AccessToken)
	if err != nil {
		return err
	}

	t.session.AccessToken = pair.AccessToken
	t.session.Claims = claims
	if pair.RefreshToken != "" {
		t.session.RefreshToken = pair.RefreshToken
	}
	t.rotated = pair.AccessToken
	t.svc.logger.Debug("access token refreshed", zap.String("user_id", t.session.UserID()))
	return nil
}
