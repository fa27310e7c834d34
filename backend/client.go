package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jrsteele09/go-oauth-grants/auth"
	"github.com/jrsteele09/go-oauth-grants/clients"
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const serviceName = "oauth"

// Backend errnos that have a local equivalent.
const (
	backendErrnoUnknownCode  = 105
	backendErrnoInvalidToken = 108
)

// Paths on the backend
const (
	PathKeyData       = "/v1/key-data"
	PathAuthorization = "/v1/authorization"
	PathToken         = "/v1/token"
	PathDestroy       = "/v1/destroy"
	PathVerify        = "/v1/verify"
)

var _ auth.Engine = (*Client)(nil)

// Client talks to the OAuth backend over HTTP. Read-only calls are retried
// with exponential backoff; calls that create or destroy state are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   uint
	backOff    func() backoff.BackOff
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetries sets how many times a read-only call is attempted in total
// and the backoff between attempts.
func WithRetries(maxTries uint, newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.maxTries = maxTries
		if newBackOff != nil {
			c.backOff = newBackOff
		}
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] backend URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxTries:   3,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.maxTries == 0 {
		c.maxTries = 1
	}
	return c, nil
}

// sessionClaims is how an authenticated session is presented to the backend.
type sessionClaims struct {
	UID            string `json:"uid"`
	SessionTokenID string `json:"session_token_id"`
	Email          string `json:"email,omitempty"`
	EmailVerified  bool   `json:"email_verified"`
	TokenVerified  bool   `json:"token_verified"`
	AuthAt         int64  `json:"auth_at,omitempty"`
}

func claimsFor(session *sessions.SessionToken) *sessionClaims {
	if session == nil {
		return nil
	}
	c := &sessionClaims{
		UID:            session.UID,
		SessionTokenID: session.ID,
		Email:          session.Email,
		EmailVerified:  session.EmailVerified,
		TokenVerified:  session.TokenVerified,
	}
	if !session.AuthAt.IsZero() {
		c.AuthAt = session.AuthAt.Unix()
	}
	return c
}

func (c *Client) GetScopedKeyData(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.ScopedKeyDataRequest) (map[string]oauth2.ScopedKeyData, error) {
	body := struct {
		*oauthmodel.ScopedKeyDataRequest
		Session *sessionClaims `json:"session"`
	}{req, claimsFor(session)}

	out := map[string]oauth2.ScopedKeyData{}
	if err := c.postWithRetry(ctx, PathKeyData, body, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.GetScopedKeyData]")
	}
	return out, nil
}

func (c *Client) CreateAuthorizationCode(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.AuthorizationRequest) (*oauth2.AuthorizationCode, error) {
	body := struct {
		*oauthmodel.AuthorizationRequest
		Session *sessionClaims `json:"session"`
	}{req, claimsFor(session)}

	out := &oauth2.AuthorizationCode{}
	if err := c.post(ctx, PathAuthorization, body, out); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateAuthorizationCode]")
	}
	return out, nil
}

func (c *Client) GrantTokensFromAuthorizationCode(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	return c.grant(ctx, nil, req)
}

func (c *Client) GrantTokensFromRefreshToken(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	return c.grant(ctx, nil, req)
}

func (c *Client) GrantTokensFromSessionToken(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	if session == nil {
		return oauth2.Grant{}, apperrors.InvalidToken("session required")
	}
	return c.grant(ctx, session, req)
}

func (c *Client) grant(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	body := struct {
		*oauthmodel.TokenRequest
		Session *sessionClaims `json:"session,omitempty"`
	}{req, claimsFor(session)}

	var grant oauth2.Grant
	if err := c.post(ctx, PathToken, body, &grant); err != nil {
		return oauth2.Grant{}, errors.Wrapf(err, "[Client.grant] %s", req.GrantType)
	}
	return grant, nil
}

func (c *Client) RevokeAccessToken(ctx context.Context, token string, creds clients.Credentials) error {
	return c.revoke(ctx, token, oauth2.AccessTokenHint, creds)
}

func (c *Client) RevokeRefreshToken(ctx context.Context, token string, creds clients.Credentials) error {
	return c.revoke(ctx, token, oauth2.RefreshTokenHint, creds)
}

func (c *Client) revoke(ctx context.Context, token string, hint oauth2.TokenTypeHint, creds clients.Credentials) error {
	body := struct {
		clients.Credentials
		Token         string               `json:"token"`
		TokenTypeHint oauth2.TokenTypeHint `json:"token_type_hint"`
	}{creds, token, hint}
	return errors.Wrapf(c.post(ctx, PathDestroy, body, nil), "[Client.revoke] %s", hint)
}

func (c *Client) VerifyAccessToken(ctx context.Context, accessToken string) (*oauth2.TokenInfo, error) {
	out := &oauth2.TokenInfo{}
	if err := c.postWithRetry(ctx, PathVerify, map[string]string{"token": accessToken}, out); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyAccessToken]")
	}
	return out, nil
}

func (c *Client) postWithRetry(ctx context.Context, path string, body, out any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.post(ctx, path, body, out)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Dur("retry_in", d).Msg("backend call failed, retrying")
		}),
	)
	return err
}

// retryable reports whether a failed call may succeed when repeated: transport
// failures and backend 5xx without a typed errno.
func retryable(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return true
	}
	return appErr.Errno == apperrors.ErrnoBackendServiceFailure
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "backend request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return backendError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// errorBody is the backend's error document.
type errorBody struct {
	Code    int    `json:"code"`
	Errno   int    `json:"errno"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func backendError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Errno == 0 {
		return apperrors.BackendServiceFailure(serviceName, status)
	}
	switch eb.Errno {
	case backendErrnoInvalidToken:
		return apperrors.InvalidToken(eb.Message)
	case backendErrnoUnknownCode:
		return apperrors.UnknownAuthorizationCode()
	}
	return &apperrors.AppError{
		Errno:   eb.Errno,
		Status:  status,
		Code:    eb.Error,
		Message: eb.Message,
		Info:    map[string]any{"service": serviceName},
	}
}
