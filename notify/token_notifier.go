package notify

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/devices"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/jrsteele09/go-oauth-grants/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ NewTokenNotifier = (*TokenNotifier)(nil)

// TokenNotifierDeps holds the collaborators of a TokenNotifier.
type TokenNotifierDeps struct {
	Accounts sessions.Repo
	Devices  devices.Registry
	Mailer   Mailer
	Pusher   Pusher
}

// TokenNotifier registers the device behind a new sync refresh token and
// tells the user and their other devices about it.
type TokenNotifier struct {
	deps TokenNotifierDeps
}

func NewTokenNotifierService(deps TokenNotifierDeps) (*TokenNotifier, error) {
	if deps.Accounts == nil {
		return nil, errors.New("[NewTokenNotifierService] Accounts repo is required")
	}
	if deps.Devices == nil {
		return nil, errors.New("[NewTokenNotifierService] Devices registry is required")
	}
	if deps.Mailer == nil {
		return nil, errors.New("[NewTokenNotifierService] Mailer is required")
	}
	if deps.Pusher == nil {
		return nil, errors.New("[NewTokenNotifierService] Pusher is required")
	}
	return &TokenNotifier{deps: deps}, nil
}

// NotifyNewToken upserts a device record for sync grants, sends the new
// sign-in email, and for sync grants pushes a device-connected message to
// the account's other devices.
func (tn *TokenNotifier) NotifyNewToken(ctx context.Context, event NewToken) error {
	if event.UID == "" {
		return errors.New("[TokenNotifier.NotifyNewToken] uid is required")
	}
	log := zerolog.Ctx(ctx)

	var device *devices.Device
	if event.Grant.Scopes().Contains(oauth2.ScopeOldSync) {
		var err error
		device, err = tn.deps.Devices.Upsert(ctx, &devices.Device{
			UID:            event.UID,
			ClientID:       event.ClientID,
			RefreshTokenID: token.ID(event.Grant.RefreshToken),
			SessionTokenID: event.Grant.SessionTokenID,
			UserAgent:      event.UserAgent,
			Location:       event.Location,
		})
		if err != nil {
			return errors.Wrap(err, "[TokenNotifier.NotifyNewToken] upsert device")
		}
		log.Debug().Str("uid", event.UID).Str("device_id", device.ID).Msg("device registered for refresh token")
	}

	account, err := tn.deps.Accounts.Account(ctx, event.UID)
	if err != nil {
		return errors.Wrap(err, "[TokenNotifier.NotifyNewToken] load account")
	}

	deviceName := (&devices.Device{UserAgent: event.UserAgent}).DisplayName()
	if device != nil {
		deviceName = device.DisplayName()
	}

	if err := tn.deps.Mailer.SendNewDeviceLogin(ctx, NewDeviceLogin{
		To:         account.Email,
		Locale:     account.Locale,
		UID:        event.UID,
		ClientID:   event.ClientID,
		DeviceName: deviceName,
		Location:   event.Location,
	}); err != nil {
		return errors.Wrap(err, "[TokenNotifier.NotifyNewToken] send email")
	}

	if device == nil {
		return nil
	}

	all, err := tn.deps.Devices.List(ctx, event.UID)
	if err != nil {
		return errors.Wrap(err, "[TokenNotifier.NotifyNewToken] list devices")
	}
	others := make([]*devices.Device, 0, len(all))
	for _, d := range all {
		if d.ID != device.ID {
			others = append(others, d)
		}
	}
	if len(others) == 0 {
		return nil
	}
	return errors.Wrap(tn.deps.Pusher.DeviceConnected(ctx, event.UID, others, deviceName), "[TokenNotifier.NotifyNewToken] push")
}
