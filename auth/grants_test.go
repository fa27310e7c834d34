package auth_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/metrics"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testAccessToken  = strings.Repeat("a1", 32)
	testRefreshToken = strings.Repeat("b2", 32)
)

var engineGrantMethods = []string{"GrantTokensFromAuthorizationCode", "GrantTokensFromRefreshToken", "GrantTokensFromSessionToken"}

func tokenRequest(grantType oauth2.GrantType, clientID string) *oauthmodel.TokenRequest {
	req := &oauthmodel.TokenRequest{GrantType: grantType, ClientID: clientID}
	switch grantType {
	case oauth2.AuthorizationCodeGrant:
		req.Code = strings.Repeat("c", 64)
		req.ClientSecret = strings.Repeat("d", 64)
	case oauth2.RefreshTokenGrant:
		req.RefreshToken = testRefreshToken
	case oauth2.CredentialsGrant:
		req.AccessType = oauth2.OnlineAccess
	}
	return req
}

// expectGrant sets up the single exchange a grant type must use.
func (f *testFixture) expectGrant(grantType oauth2.GrantType, grant oauth2.Grant, err error) {
	switch grantType {
	case oauth2.AuthorizationCodeGrant:
		f.engine.On("GrantTokensFromAuthorizationCode", mock.Anything, mock.Anything).Return(grant, err).Once()
	case oauth2.RefreshTokenGrant:
		f.engine.On("GrantTokensFromRefreshToken", mock.Anything, mock.Anything).Return(grant, err).Once()
	case oauth2.CredentialsGrant:
		f.engine.On("GrantTokensFromSessionToken", mock.Anything, f.session, mock.Anything).Return(grant, err).Once()
	}
}

// expectVerify lets flows without a session resolve the token owner.
func (f *testFixture) expectVerify() {
	f.engine.On("VerifyAccessToken", mock.Anything, mock.Anything).Return(&oauth2.TokenInfo{User: testUID}, nil).Maybe()
}

func TestGrantTokens_Dispatch(t *testing.T) {
	ctx := context.Background()
	grant := oauth2.Grant{AccessToken: testAccessToken, Scope: "profile", TokenType: oauth2.TokenTypeBearer, ExpiresIn: 3600, AuthAt: 1700000000}

	cases := []struct {
		grantType oauth2.GrantType
		method    string
	}{
		{oauth2.AuthorizationCodeGrant, "GrantTokensFromAuthorizationCode"},
		{oauth2.RefreshTokenGrant, "GrantTokensFromRefreshToken"},
		{oauth2.CredentialsGrant, "GrantTokensFromSessionToken"},
	}
	for _, tc := range cases {
		t.Run(string(tc.grantType), func(t *testing.T) {
			f := setupTestFixture(t)
			f.expectGrant(tc.grantType, grant, nil)
			f.expectVerify()

			resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(tc.grantType, testClientID), f.reqCtx)
			require.NoError(t, err)
			require.Equal(t, grant.Response(), *resp)

			for _, m := range engineGrantMethods {
				if m == tc.method {
					f.engine.AssertNumberOfCalls(t, m, 1)
				} else {
					f.engine.AssertNumberOfCalls(t, m, 0)
				}
			}
		})
	}

	t.Run("credentials grant needs a session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		for _, m := range engineGrantMethods {
			f.engine.AssertNumberOfCalls(t, m, 0)
		}
	})

	t.Run("unknown grant type", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest("password", testClientID), f.reqCtx)
		require.ErrorIs(t, err, apperrors.ErrInternalValidation)
	})

	t.Run("backend errors propagate and stop the pipeline", func(t *testing.T) {
		f := setupTestFixture(t)
		backendErr := apperrors.InvalidToken("")
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{}, backendErr)

		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.Same(t, backendErr, err)
		require.Empty(t, f.sessions.Created())
		require.Empty(t, f.notifier.calls)
		require.Empty(t, f.metrics.events)
	})
}

func TestGrantTokens_DisabledClients(t *testing.T) {
	ctx := context.Background()

	for _, grantType := range []oauth2.GrantType{oauth2.AuthorizationCodeGrant, oauth2.CredentialsGrant} {
		t.Run(string(grantType), func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(grantType, testDisabledClient), f.reqCtx)
			require.ErrorIs(t, err, apperrors.ErrDisabledClient)
			require.Empty(t, f.engine.Calls)
		})
	}

	t.Run("refresh exchanges are still served", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.RefreshTokenGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: "profile"}, nil)
		f.expectVerify()

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.RefreshTokenGrant, testDisabledClient), f.reqCtx)
		require.NoError(t, err)
	})
}

func TestGrantTokens_SessionTokenProvisioning(t *testing.T) {
	ctx := context.Background()

	t.Run("session scope mints a sibling session token", func(t *testing.T) {
		f := setupTestFixture(t)
		grant := oauth2.Grant{
			AccessToken:    testAccessToken,
			Scope:          "profile " + oauth2.ScopeSessionToken,
			TokenType:      oauth2.TokenTypeBearer,
			SessionTokenID: testSessionTokenID,
		}
		f.expectGrant(oauth2.CredentialsGrant, grant, nil)

		resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.NoError(t, err)

		created := f.sessions.Created()
		require.Len(t, created, 1)
		require.Equal(t, created[0].Data, resp.SessionToken)
		require.NotEqual(t, testSessionTokenID, created[0].ID)

		want := f.session.CopyTokenState().WithUserAgent(f.reqCtx.UserAgent)
		require.Equal(t, want, created[0].TokenState)
	})

	t.Run("no session scope, no new session token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: "profile", SessionTokenID: testSessionTokenID}, nil)

		resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.NoError(t, err)
		require.Empty(t, resp.SessionToken)
		require.Empty(t, f.sessions.Created())
	})

	t.Run("lookup failure is an unknown authorization code", func(t *testing.T) {
		f := setupTestFixture(t)
		storageErr := errors.New("connection reset")
		f.sessions.SessionTokenErr = storageErr
		f.expectGrant(oauth2.AuthorizationCodeGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: oauth2.ScopeSessionToken, SessionTokenID: testSessionTokenID}, nil)

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.AuthorizationCodeGrant, testClientID), f.reqCtx)
		require.ErrorIs(t, err, apperrors.ErrUnknownAuthorizationCode)
		require.NotErrorIs(t, err, storageErr)
	})

	t.Run("missing source session token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.AuthorizationCodeGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: oauth2.ScopeSessionToken, SessionTokenID: "gone"}, nil)

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.AuthorizationCodeGrant, testClientID), f.reqCtx)
		require.ErrorIs(t, err, apperrors.ErrUnknownAuthorizationCode)
	})

	t.Run("creation failure propagates", func(t *testing.T) {
		f := setupTestFixture(t)
		f.sessions.CreateErr = errors.New("write failed")
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: oauth2.ScopeSessionToken, SessionTokenID: testSessionTokenID}, nil)

		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.Error(t, err)
	})
}

func TestGrantTokens_ResponseNeverCarriesSessionTokenID(t *testing.T) {
	ctx := context.Background()

	for _, scope := range []string{"profile", "profile " + oauth2.ScopeSessionToken} {
		t.Run(scope, func(t *testing.T) {
			f := setupTestFixture(t)
			f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{
				AccessToken:    testAccessToken,
				RefreshToken:   testRefreshToken,
				Scope:          scope,
				SessionTokenID: testSessionTokenID,
			}, nil)

			resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
			require.NoError(t, err)

			raw, err := json.Marshal(resp)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(raw, &fields))
			require.NotContains(t, fields, "session_token_id")
		})
	}
}

func TestGrantTokens_RefreshTokenNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("new refresh token notifies with the provisioned session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{
			AccessToken:    testAccessToken,
			RefreshToken:   testRefreshToken,
			Scope:          oauth2.ScopeOldSync + " " + oauth2.ScopeSessionToken,
			SessionTokenID: testSessionTokenID,
		}, nil)

		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.NoError(t, err)

		require.Len(t, f.notifier.calls, 1)
		call := f.notifier.calls[0]
		require.Equal(t, testUID, call.UID)
		require.Equal(t, testClientID, call.ClientID)
		require.Equal(t, testRefreshToken, call.Grant.RefreshToken)
		require.Equal(t, f.sessions.Created()[0].ID, call.Grant.SessionTokenID)
		require.Equal(t, f.reqCtx.UserAgent, call.UserAgent)
		require.Equal(t, f.reqCtx.Location, call.Location)
	})

	t.Run("owner is resolved from the access token without a session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.AuthorizationCodeGrant, oauth2.Grant{AccessToken: testAccessToken, RefreshToken: testRefreshToken, Scope: "profile"}, nil)
		f.engine.On("VerifyAccessToken", mock.Anything, testAccessToken).Return(&oauth2.TokenInfo{User: testUID}, nil)

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.AuthorizationCodeGrant, testClientID), f.reqCtx)
		require.NoError(t, err)
		require.Len(t, f.notifier.calls, 1)
		require.Equal(t, testUID, f.notifier.calls[0].UID)
	})

	t.Run("owner is looked up once for notification and metrics", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.AuthorizationCodeGrant, oauth2.Grant{AccessToken: testAccessToken, RefreshToken: testRefreshToken, Scope: "profile"}, nil)
		f.engine.On("VerifyAccessToken", mock.Anything, testAccessToken).Return(&oauth2.TokenInfo{User: testUID}, nil).Once()

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.AuthorizationCodeGrant, testClientID), f.reqCtx)
		require.NoError(t, err)
		f.engine.AssertNumberOfCalls(t, "VerifyAccessToken", 1)
		require.Len(t, f.notifier.calls, 1)
		require.Len(t, f.metrics.named(metrics.EventTokenCreated), 1)
	})

	t.Run("unresolvable owner fails a refresh token notification", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.AuthorizationCodeGrant, oauth2.Grant{AccessToken: testAccessToken, RefreshToken: testRefreshToken, Scope: "profile"}, nil)
		f.engine.On("VerifyAccessToken", mock.Anything, testAccessToken).Return(nil, apperrors.InvalidToken("")).Once()

		resp, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.AuthorizationCodeGrant, testClientID), f.reqCtx)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		require.Nil(t, resp)
		require.Empty(t, f.notifier.calls)
		require.Empty(t, f.metrics.events)
	})

	t.Run("no refresh token, no notification", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: "profile"}, nil)

		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.NoError(t, err)
		require.Empty(t, f.notifier.calls)
	})

	t.Run("notification failure fails the request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.notifier.err = errors.New("mail relay down")
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, RefreshToken: testRefreshToken, Scope: "profile"}, nil)

		resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.Error(t, err)
		require.Nil(t, resp)
		require.Empty(t, f.metrics.events)
	})
}

func TestGrantTokens_Metrics(t *testing.T) {
	ctx := context.Background()

	t.Run("token created event", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: "profile"}, nil)

		_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
		require.NoError(t, err)

		events := f.metrics.named(metrics.EventTokenCreated)
		require.Len(t, events, 1)
		require.Equal(t, map[string]any{
			"grantType":       "fxa-credentials",
			"uid":             testUID,
			"ecosystemAnonId": "anon-id",
			"clientId":        testClientID,
			"service":         testClientID,
		}, events[0].payload)
	})

	failures := map[string]func(f *testFixture){
		"account lookup fails": func(f *testFixture) { f.sessions.AccountErr = errors.New("db down") },
		"emitter fails":        func(f *testFixture) { f.metrics.err = errors.New("sink down") },
		"emitter panics":       func(f *testFixture) { f.metrics.panics = true },
	}
	for name, breakIt := range failures {
		t.Run(name+" does not fail the grant", func(t *testing.T) {
			f := setupTestFixture(t)
			breakIt(f)
			f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: oauth2.ScopeOldSync}, nil)

			resp, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, testClientID), f.reqCtx)
			require.NoError(t, err)
			require.Equal(t, testAccessToken, resp.AccessToken)
		})
	}

	t.Run("owner lookup failure does not fail the grant", func(t *testing.T) {
		f := setupTestFixture(t)
		f.expectGrant(oauth2.RefreshTokenGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: "profile"}, nil)
		f.engine.On("VerifyAccessToken", mock.Anything, testAccessToken).Return(nil, apperrors.InvalidToken("")).Once()

		_, err := f.service.GrantTokens(ctx, nil, tokenRequest(oauth2.RefreshTokenGrant, testClientID), f.reqCtx)
		require.NoError(t, err)
		require.Empty(t, f.metrics.events)
	})
}

func TestGrantTokens_AccountSignedEvent(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name        string
		clientID    string
		scope       string
		wantEvent   bool
		wantService string
	}{
		{"sync scope from legacy client", testOldSyncClientID, oauth2.ScopeOldSync, true, "sync"},
		{"sync scope from other client", testClientID, oauth2.ScopeOldSync, true, testClientID},
		{"sync and profile", testOldSyncClientID, oauth2.ScopeOldSync + " profile", false, ""},
		{"profile only", testClientID, "profile", false, ""},
		{"session scope only", testClientID, oauth2.ScopeSessionToken + " openid", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.expectGrant(oauth2.CredentialsGrant, oauth2.Grant{AccessToken: testAccessToken, Scope: tc.scope, SessionTokenID: testSessionTokenID}, nil)

			_, err := f.service.GrantTokens(ctx, f.session, tokenRequest(oauth2.CredentialsGrant, tc.clientID), f.reqCtx)
			require.NoError(t, err)

			events := f.metrics.named(metrics.EventAccountSigned)
			if !tc.wantEvent {
				require.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			require.Equal(t, map[string]any{
				"uid":       testUID,
				"device_id": testDeviceID,
				"service":   tc.wantService,
			}, events[0].payload)
		})
	}
}

// A code exchange whose scope carries sync and profile: the response drops
// the internal session id and no sync sign-in is reported.
func TestGrantTokens_CodeExchangeExample(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	req := &oauthmodel.TokenRequest{GrantType: oauth2.AuthorizationCodeGrant, Code: "abc", ClientID: "c1"}
	scope := "profile " + oauth2.ScopeOldSync
	f.engine.On("GrantTokensFromAuthorizationCode", mock.Anything, req).
		Return(oauth2.Grant{AccessToken: "t1", Scope: scope, SessionTokenID: "s1"}, nil).Once()
	f.expectVerify()

	resp, err := f.service.GrantTokens(ctx, nil, req, f.reqCtx)
	require.NoError(t, err)
	require.Equal(t, oauth2.TokenResponse{AccessToken: "t1", Scope: scope}, *resp)
	require.Empty(t, f.metrics.named(metrics.EventAccountSigned))
	require.Empty(t, f.sessions.Created())
}
