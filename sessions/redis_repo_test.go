package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedisRepo(t *testing.T, options ...sessions.RedisRepoOption) (*sessions.RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return sessions.NewRedisRepo(client, options...), mr
}

func TestRedisRepo_SessionTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mr := setupRedisRepo(t, sessions.WithKeyPrefix("fxa"), sessions.WithTokenTTL(time.Hour), sessions.WithNowFunc(func() time.Time { return now }))

	state := sessions.TokenState{
		UID:           "uid-1",
		Email:         "a@example.com",
		EmailVerified: true,
		UserAgent:     sessions.UserAgentInfo{Browser: "Firefox", OS: "Android"},
	}

	created, err := repo.CreateSessionToken(ctx, state)
	require.NoError(t, err)
	require.Len(t, created.ID, 64)
	require.Len(t, created.Data, 64)
	require.Equal(t, now, created.CreatedAt)

	derived, err := sessions.DeriveTokenID(created.Data)
	require.NoError(t, err)
	require.Equal(t, created.ID, derived)

	require.True(t, mr.Exists("fxa:sessionToken:"+created.ID))
	require.Equal(t, time.Hour, mr.TTL("fxa:sessionToken:"+created.ID))

	loaded, err := repo.SessionToken(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, state, loaded.CopyTokenState())
	require.Equal(t, created.Data, loaded.Data)

	_, err = repo.SessionToken(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisRepo_Accounts(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRedisRepo(t)

	_, err := repo.Account(ctx, "uid-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.PutAccount(ctx, &sessions.Account{UID: "uid-1", Email: "a@example.com", EcosystemAnonID: "anon"}))
	account, err := repo.Account(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, "anon", account.EcosystemAnonID)

	require.Error(t, repo.PutAccount(ctx, &sessions.Account{}))
}

func TestCachedRepo_Account(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRedisRepo(t)
	require.NoError(t, repo.PutAccount(ctx, &sessions.Account{UID: "uid-1", EcosystemAnonID: "anon-1"}))

	cached := sessions.NewCachedRepo(repo, 50*time.Millisecond)
	account, err := cached.Account(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, "anon-1", account.EcosystemAnonID)

	// Changes behind the cache are not seen until the entry expires.
	require.NoError(t, repo.PutAccount(ctx, &sessions.Account{UID: "uid-1", EcosystemAnonID: "anon-2"}))
	account, err = cached.Account(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, "anon-1", account.EcosystemAnonID)

	require.Eventually(t, func() bool {
		account, err := cached.Account(ctx, "uid-1")
		return err == nil && account.EcosystemAnonID == "anon-2"
	}, time.Second, 10*time.Millisecond)

	_, err = cached.Account(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeriveTokenID(t *testing.T) {
	id1, err := sessions.DeriveTokenID("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	id2, err := sessions.DeriveTokenID("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	_, err = sessions.DeriveTokenID("not-hex")
	require.Error(t, err)
}
