package devices

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-grants/geo"
	"github.com/jrsteele09/go-oauth-grants/sessions"
)

// Device is a client connected to an account, identified either by the
// session token or by the refresh token it holds.
type Device struct {
	ID             string                 `json:"id"`
	UID            string                 `json:"uid"`
	Name           string                 `json:"name,omitempty"`
	Type           string                 `json:"type,omitempty"`
	ClientID       string                 `json:"clientId,omitempty"`
	SessionTokenID string                 `json:"sessionTokenId,omitempty"`
	RefreshTokenID string                 `json:"refreshTokenId,omitempty"`
	UserAgent      sessions.UserAgentInfo `json:"userAgent"`
	Location       geo.Location           `json:"location"`
	CreatedAt      time.Time              `json:"createdAt"`
	LastAccessTime time.Time              `json:"lastAccessTime"`
}

// Registry is the per-account device store.
type Registry interface {
	// List returns the devices of an account.
	List(ctx context.Context, uid string) ([]*Device, error)

	// Upsert stores a device. A device with no ID matching an existing record
	// by refresh token id or session token id updates that record; otherwise
	// a new id is assigned.
	Upsert(ctx context.Context, device *Device) (*Device, error)
}

// DisplayName picks a human readable name for notifications.
func (d *Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	name := d.UserAgent.Browser
	if d.UserAgent.OS != "" {
		if name != "" {
			name += " on "
		}
		name += d.UserAgent.OS
	}
	return name
}

// matches reports whether d and other describe the same connected client.
func (d *Device) matches(other *Device) bool {
	if d.RefreshTokenID != "" && d.RefreshTokenID == other.RefreshTokenID {
		return true
	}
	return d.SessionTokenID != "" && d.SessionTokenID == other.SessionTokenID
}
