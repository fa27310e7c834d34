package sessions

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTokenKeyPrefix = "sessionToken:"
	accountKeyPrefix      = "account:"
)

var (
	_ Repo          = (*RedisRepo)(nil)
	_ AccountWriter = (*RedisRepo)(nil)
)

// RedisRepo stores session tokens and account records as JSON values in Redis.
type RedisRepo struct {
	client   redis.UniversalClient
	prefix   string
	tokenTTL time.Duration
	nowFunc  func() time.Time
}

// RedisRepoOption configures a RedisRepo.
type RedisRepoOption func(*RedisRepo)

// WithKeyPrefix namespaces every key written by the repo.
func WithKeyPrefix(prefix string) RedisRepoOption {
	return func(r *RedisRepo) {
		r.prefix = prefix
	}
}

// WithTokenTTL expires session tokens after d. Zero keeps them until deleted.
func WithTokenTTL(d time.Duration) RedisRepoOption {
	return func(r *RedisRepo) {
		r.tokenTTL = d
	}
}

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) RedisRepoOption {
	return func(r *RedisRepo) {
		r.nowFunc = now
	}
}

// NewRedisRepo creates a Redis-backed Repo.
func NewRedisRepo(client redis.UniversalClient, options ...RedisRepoOption) *RedisRepo {
	r := &RedisRepo{
		client:  client,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisRepo) key(prefix, id string) string {
	if r.prefix == "" {
		return prefix + id
	}
	return r.prefix + ":" + prefix + id
}

// SessionToken implements Repo.
func (r *RedisRepo) SessionToken(ctx context.Context, id string) (*SessionToken, error) {
	if id == "" {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[RedisRepo.SessionToken] empty id")
	}
	token := &SessionToken{}
	if err := r.getJSON(ctx, r.key(sessionTokenKeyPrefix, id), token); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.SessionToken]")
	}
	return token, nil
}

// CreateSessionToken implements Repo.
func (r *RedisRepo) CreateSessionToken(ctx context.Context, state TokenState) (*SessionToken, error) {
	data, id, err := NewTokenData()
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.CreateSessionToken]")
	}
	token := &SessionToken{
		TokenState: state,
		ID:         id,
		Data:       data,
		CreatedAt:  r.nowFunc().UTC(),
	}
	if err := r.setJSON(ctx, r.key(sessionTokenKeyPrefix, id), token, r.tokenTTL); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.CreateSessionToken]")
	}
	return token, nil
}

// Account implements Repo.
func (r *RedisRepo) Account(ctx context.Context, uid string) (*Account, error) {
	account := &Account{}
	if err := r.getJSON(ctx, r.key(accountKeyPrefix, uid), account); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Account]")
	}
	return account, nil
}

// PutAccount implements AccountWriter.
func (r *RedisRepo) PutAccount(ctx context.Context, account *Account) error {
	if account == nil || account.UID == "" {
		return errors.New("[RedisRepo.PutAccount] account uid is required")
	}
	return errors.Wrap(r.setJSON(ctx, r.key(accountKeyPrefix, account.UID), account, 0), "[RedisRepo.PutAccount]")
}

func (r *RedisRepo) getJSON(ctx context.Context, key string, out any) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (r *RedisRepo) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, ttl).Err()
}
