package fakesessionrepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	tokens   map[string]*sessions.SessionToken
	accounts map[string]*sessions.Account
	created  []*sessions.SessionToken
	lock     sync.RWMutex

	// Failure injection
	SessionTokenErr error
	CreateErr       error
	AccountErr      error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		tokens:   make(map[string]*sessions.SessionToken),
		accounts: make(map[string]*sessions.Account),
	}
}

// AddSessionToken stores a token as-is.
func (sr *FakeSessionRepo) AddSessionToken(token *sessions.SessionToken) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.tokens[token.ID] = token
}

// AddAccount stores an account as-is.
func (sr *FakeSessionRepo) AddAccount(account *sessions.Account) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.accounts[account.UID] = account
}

// Created returns the tokens created through CreateSessionToken, in order.
func (sr *FakeSessionRepo) Created() []*sessions.SessionToken {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return append([]*sessions.SessionToken(nil), sr.created...)
}

func (sr *FakeSessionRepo) SessionToken(_ context.Context, id string) (*sessions.SessionToken, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.SessionTokenErr != nil {
		return nil, sr.SessionTokenErr
	}
	token, ok := sr.tokens[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "session token")
	}
	return token, nil
}

func (sr *FakeSessionRepo) CreateSessionToken(_ context.Context, state sessions.TokenState) (*sessions.SessionToken, error) {
	if sr.CreateErr != nil {
		return nil, sr.CreateErr
	}
	data, id, err := sessions.NewTokenData()
	if err != nil {
		return nil, err
	}
	token := &sessions.SessionToken{TokenState: state, ID: id, Data: data}

	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.tokens[id] = token
	sr.created = append(sr.created, token)
	return token, nil
}

func (sr *FakeSessionRepo) Account(_ context.Context, uid string) (*sessions.Account, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.AccountErr != nil {
		return nil, sr.AccountErr
	}
	account, ok := sr.accounts[uid]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "account")
	}
	return account, nil
}
