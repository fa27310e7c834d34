package notify

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/devices"
	"github.com/jrsteele09/go-oauth-grants/geo"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/sessions"
)

// Attached-services event names
const (
	EventLogin = "login"
)

// AttachedServices broadcasts account events to relying services.
type AttachedServices interface {
	Publish(ctx context.Context, event string, payload map[string]any) error
}

// Pusher delivers device notifications to the other devices on an account.
type Pusher interface {
	DeviceConnected(ctx context.Context, uid string, recipients []*devices.Device, deviceName string) error
}

// Mailer sends account emails.
type Mailer interface {
	SendNewDeviceLogin(ctx context.Context, msg NewDeviceLogin) error
}

// NewTokenNotifier reacts to a refresh token being handed out.
type NewTokenNotifier interface {
	NotifyNewToken(ctx context.Context, event NewToken) error
}

// NewToken describes a grant that carried a refresh token.
type NewToken struct {
	UID             string
	ClientID        string
	Grant           oauth2.Grant
	UserAgent       sessions.UserAgentInfo
	UserAgentString string
	Location        geo.Location
}

// NewDeviceLogin is the content of a new sign-in email.
type NewDeviceLogin struct {
	To         string
	Locale     string
	UID        string
	ClientID   string
	DeviceName string
	Location   geo.Location
}
