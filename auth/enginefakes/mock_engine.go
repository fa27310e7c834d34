package enginefakes

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/auth"
	"github.com/jrsteele09/go-oauth-grants/clients"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/stretchr/testify/mock"
)

var _ auth.Engine = (*MockEngine)(nil)

// MockEngine is a testify mock of auth.Engine. Unexpected calls fail the test.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) GetScopedKeyData(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.ScopedKeyDataRequest) (map[string]oauth2.ScopedKeyData, error) {
	args := m.Called(ctx, session, req)
	out, _ := args.Get(0).(map[string]oauth2.ScopedKeyData)
	return out, args.Error(1)
}

func (m *MockEngine) CreateAuthorizationCode(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.AuthorizationRequest) (*oauth2.AuthorizationCode, error) {
	args := m.Called(ctx, session, req)
	out, _ := args.Get(0).(*oauth2.AuthorizationCode)
	return out, args.Error(1)
}

func (m *MockEngine) GrantTokensFromAuthorizationCode(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	args := m.Called(ctx, req)
	grant, _ := args.Get(0).(oauth2.Grant)
	return grant, args.Error(1)
}

func (m *MockEngine) GrantTokensFromRefreshToken(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	args := m.Called(ctx, req)
	grant, _ := args.Get(0).(oauth2.Grant)
	return grant, args.Error(1)
}

func (m *MockEngine) GrantTokensFromSessionToken(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	args := m.Called(ctx, session, req)
	grant, _ := args.Get(0).(oauth2.Grant)
	return grant, args.Error(1)
}

func (m *MockEngine) RevokeAccessToken(ctx context.Context, token string, creds clients.Credentials) error {
	return m.Called(ctx, token, creds).Error(0)
}

func (m *MockEngine) RevokeRefreshToken(ctx context.Context, token string, creds clients.Credentials) error {
	return m.Called(ctx, token, creds).Error(0)
}

func (m *MockEngine) VerifyAccessToken(ctx context.Context, accessToken string) (*oauth2.TokenInfo, error) {
	args := m.Called(ctx, accessToken)
	out, _ := args.Get(0).(*oauth2.TokenInfo)
	return out, args.Error(1)
}
