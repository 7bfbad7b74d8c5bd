package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/adapter/harara"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
)

// DefaultTokenTTL applies when the login response carries no usable expiry.
const DefaultTokenTTL = 24 * time.Hour

// Controller restores, creates, and ends operator sessions.
type Controller struct {
	client  *harara.Client
	verify  bool
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewController creates a session controller. When verify is set, restored
// sessions are confirmed with the backend before use.
func NewController(client *harara.Client, verify bool, metrics *observability.Metrics, logger *slog.Logger) *Controller {
	return &Controller{client: client, verify: verify, metrics: metrics, logger: logger}
}

// API returns the API client bound to sess.
func (c *Controller) API(sess *Session) *harara.Client {
	return c.client.For(sess)
}

// Restore loads the session persisted in st. It returns domain.ErrNoSession,
// after clearing st, when no unexpired token is stored.
func (c *Controller) Restore(ctx context.Context, st Storage) (*Session, error) {
	token, err := st.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	rawExpiry, err := st.Get(ctx, KeyTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	expiryMillis, parseErr := strconv.ParseInt(rawExpiry, 10, 64)
	if token == "" || parseErr != nil || domain.Now().UnixMilli() >= expiryMillis {
		if token != "" || rawExpiry != "" {
			if err := st.Remove(ctx, KeyToken, KeyTokenExpiry); err != nil {
				c.logger.Warn("clear stale session", "error", err)
			}
			c.logger.Debug("stored session expired or incomplete")
		}
		return nil, domain.ErrNoSession
	}

	sess := c.newSession(st, token, time.UnixMilli(expiryMillis))
	if c.verify {
		if err := c.API(sess).VerifyToken(ctx); err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return nil, domain.ErrNoSession
			}
			c.logger.Warn("token verification unavailable", "error", err)
		}
	}
	return sess, nil
}

// Login authenticates with the backend and persists the new session in st.
// Use FailureMessage to display a returned error.
func (c *Controller) Login(ctx context.Context, st Storage, creds domain.Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	res, err := c.client.For(nil).Login(ctx, creds)
	if err != nil {
		c.metrics.Logins.WithLabelValues(domain.OutcomeFailure).Inc()
		c.logger.Info("login rejected", "username", creds.Username, "error", err)
		return nil, err
	}
	if res.AccessToken == "" {
		c.metrics.Logins.WithLabelValues(domain.OutcomeFailure).Inc()
		return nil, errors.New("login response carried no access token")
	}

	now := domain.Now()
	ttl := time.Duration(res.ExpiresIn) * time.Second
	if ttl <= 0 {
		if _, exp := tokenClaims(res.AccessToken); exp.After(now) {
			ttl = exp.Sub(now)
		} else {
			ttl = DefaultTokenTTL
		}
	}
	expiresAt := time.UnixMilli(now.UnixMilli() + ttl.Milliseconds())

	err = st.Set(ctx, map[string]string{
		KeyToken:       res.AccessToken,
		KeyTokenExpiry: strconv.FormatInt(expiresAt.UnixMilli(), 10),
	}, ttl)
	if err != nil {
		c.metrics.Logins.WithLabelValues(domain.OutcomeFailure).Inc()
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.metrics.Logins.WithLabelValues(domain.OutcomeSuccess).Inc()
	sess := c.newSession(st, res.AccessToken, expiresAt)
	c.logger.Info("operator logged in", "operator", sess.Operator(), "expires_at", expiresAt)
	return sess, nil
}

// Logout clears the persisted session and uninstalls its token.
func (c *Controller) Logout(ctx context.Context, sess *Session) error {
	if err := sess.clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.Info("operator logged out", "operator", sess.Operator())
	return nil
}

func (c *Controller) newSession(st Storage, token string, expiresAt time.Time) *Session {
	subject, _ := tokenClaims(token)
	return &Session{
		token:     token,
		expiresAt: expiresAt,
		operator:  subject,
		storage:   st,
		logger:    c.logger,
	}
}

// FailureMessage is the text shown on the login form for a Login error.
func FailureMessage(err error) string {
	if errors.Is(err, domain.ErrMissingField) {
		return "Username and password are required"
	}
	if detail := harara.Detail(err); detail != "" {
		return detail
	}
	return "Login failed"
}
