package sessions

import "context"

// Repo is the account/session store.
type Repo interface {
	// SessionToken loads a session token by id.
	SessionToken(ctx context.Context, id string) (*SessionToken, error)

	// CreateSessionToken creates a new session token from the given state.
	CreateSessionToken(ctx context.Context, state TokenState) (*SessionToken, error)

	// Account loads an account by uid.
	Account(ctx context.Context, uid string) (*Account, error)
}

// AccountWriter is implemented by stores that can be seeded with accounts.
type AccountWriter interface {
	PutAccount(ctx context.Context, account *Account) error
}
