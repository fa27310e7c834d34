package sessions

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Repo = (*CachedRepo)(nil)

// CachedRepo keeps recently loaded accounts in process memory. Session tokens
// are always read through so that a destroyed token is never served.
type CachedRepo struct {
	Repo
	accounts *gocache.Cache
}

// NewCachedRepo wraps repo with an account cache holding entries for ttl.
func NewCachedRepo(repo Repo, ttl time.Duration) *CachedRepo {
	return &CachedRepo{
		Repo:     repo,
		accounts: gocache.New(ttl, time.Minute),
	}
}

// Account returns the cached account for uid, loading it on a miss.
func (c *CachedRepo) Account(ctx context.Context, uid string) (*Account, error) {
	if v, ok := c.accounts.Get(uid); ok {
		if account, ok := v.(*Account); ok {
			copied := *account
			return &copied, nil
		}
	}
	account, err := c.Repo.Account(ctx, uid)
	if err != nil {
		return nil, err
	}
	stored := *account
	c.accounts.Set(uid, &stored, gocache.DefaultExpiration)
	return account, nil
}
