package notify_test

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-mail/mail"
	"github.com/jrsteele09/go-oauth-grants/devices"
	fakedeviceregistry "github.com/jrsteele09/go-oauth-grants/devices/repofakes"
	"github.com/jrsteele09/go-oauth-grants/geo"
	"github.com/jrsteele09/go-oauth-grants/notify"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	fakesessionrepo "github.com/jrsteele09/go-oauth-grants/sessions/repofakes"
	"github.com/jrsteele09/go-oauth-grants/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []notify.NewDeviceLogin
	err  error
}

func (m *recordingMailer) SendNewDeviceLogin(_ context.Context, msg notify.NewDeviceLogin) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type pushCall struct {
	uid        string
	recipients []string
	deviceName string
}

type recordingPusher struct {
	mu    sync.Mutex
	calls []pushCall
}

func (p *recordingPusher) DeviceConnected(_ context.Context, uid string, recipients []*devices.Device, deviceName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(recipients))
	for _, d := range recipients {
		ids = append(ids, d.ID)
	}
	p.calls = append(p.calls, pushCall{uid: uid, recipients: ids, deviceName: deviceName})
	return nil
}

type notifierFixture struct {
	notifier *notify.TokenNotifier
	accounts *fakesessionrepo.FakeSessionRepo
	devices  *fakedeviceregistry.FakeDeviceRegistry
	mailer   *recordingMailer
	pusher   *recordingPusher
}

func setupNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()
	f := &notifierFixture{
		accounts: fakesessionrepo.NewFakeSessionRepo(),
		devices:  fakedeviceregistry.NewFakeDeviceRegistry(),
		mailer:   &recordingMailer{},
		pusher:   &recordingPusher{},
	}
	f.accounts.AddAccount(&sessions.Account{UID: "uid-1", Email: "a@example.com", Locale: "en-US"})

	var err error
	f.notifier, err = notify.NewTokenNotifierService(notify.TokenNotifierDeps{
		Accounts: f.accounts,
		Devices:  f.devices,
		Mailer:   f.mailer,
		Pusher:   f.pusher,
	})
	require.NoError(t, err)
	return f
}

func TestNewTokenNotifierService_RequiresDeps(t *testing.T) {
	_, err := notify.NewTokenNotifierService(notify.TokenNotifierDeps{})
	require.Error(t, err)
}

func TestTokenNotifier_NotifyNewToken(t *testing.T) {
	ctx := context.Background()
	refreshToken := strings.Repeat("ab", 32)
	ua := sessions.UserAgentInfo{Browser: "Firefox", OS: "Android"}

	t.Run("sync grant registers device, emails and pushes", func(t *testing.T) {
		f := setupNotifierFixture(t)
		existing, err := f.devices.Upsert(ctx, &devices.Device{UID: "uid-1", SessionTokenID: "other"})
		require.NoError(t, err)

		err = f.notifier.NotifyNewToken(ctx, notify.NewToken{
			UID:       "uid-1",
			ClientID:  "client-1",
			Grant:     oauth2.Grant{RefreshToken: refreshToken, Scope: oauth2.ScopeOldSync, SessionTokenID: "st-1"},
			UserAgent: ua,
			Location:  geo.Location{Country: "Canada"},
		})
		require.NoError(t, err)

		list, err := f.devices.List(ctx, "uid-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, token.ID(refreshToken), list[1].RefreshTokenID)
		require.Equal(t, "st-1", list[1].SessionTokenID)
		require.Equal(t, "client-1", list[1].ClientID)

		require.Len(t, f.mailer.sent, 1)
		require.Equal(t, "a@example.com", f.mailer.sent[0].To)
		require.Equal(t, "Firefox on Android", f.mailer.sent[0].DeviceName)
		require.Equal(t, "Canada", f.mailer.sent[0].Location.Country)

		require.Len(t, f.pusher.calls, 1)
		require.Equal(t, []string{existing.ID}, f.pusher.calls[0].recipients)
	})

	t.Run("non sync grant only emails", func(t *testing.T) {
		f := setupNotifierFixture(t)
		err := f.notifier.NotifyNewToken(ctx, notify.NewToken{
			UID:       "uid-1",
			ClientID:  "client-1",
			Grant:     oauth2.Grant{RefreshToken: refreshToken, Scope: "profile"},
			UserAgent: ua,
		})
		require.NoError(t, err)

		list, err := f.devices.List(ctx, "uid-1")
		require.NoError(t, err)
		require.Empty(t, list)
		require.Len(t, f.mailer.sent, 1)
		require.Empty(t, f.pusher.calls)
	})

	t.Run("first device is not pushed to anyone", func(t *testing.T) {
		f := setupNotifierFixture(t)
		err := f.notifier.NotifyNewToken(ctx, notify.NewToken{
			UID:   "uid-1",
			Grant: oauth2.Grant{RefreshToken: refreshToken, Scope: oauth2.ScopeOldSync},
		})
		require.NoError(t, err)
		require.Empty(t, f.pusher.calls)
	})

	t.Run("failures propagate", func(t *testing.T) {
		f := setupNotifierFixture(t)
		f.devices.UpsertErr = errors.New("boom")
		err := f.notifier.NotifyNewToken(ctx, notify.NewToken{UID: "uid-1", Grant: oauth2.Grant{RefreshToken: refreshToken, Scope: oauth2.ScopeOldSync}})
		require.Error(t, err)

		f = setupNotifierFixture(t)
		f.mailer.err = errors.New("smtp down")
		err = f.notifier.NotifyNewToken(ctx, notify.NewToken{UID: "uid-1", Grant: oauth2.Grant{RefreshToken: refreshToken}})
		require.Error(t, err)

		f = setupNotifierFixture(t)
		err = f.notifier.NotifyNewToken(ctx, notify.NewToken{UID: "unknown", Grant: oauth2.Grant{RefreshToken: refreshToken}})
		require.Error(t, err)

		err = f.notifier.NotifyNewToken(ctx, notify.NewToken{Grant: oauth2.Grant{RefreshToken: refreshToken}})
		require.Error(t, err)
	})
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.UnixMilli(1714564800000)
	publisher := notify.NewRedisPublisher(client, notify.WithChannels("events", "push"), notify.WithPublisherClock(func() time.Time { return now }))

	sub := client.Subscribe(ctx, "events", "push")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	receive := func() (string, notify.Message) {
		t.Helper()
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		msg, err := sub.ReceiveMessage(rctx)
		require.NoError(t, err)
		var out notify.Message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &out))
		return msg.Channel, out
	}

	require.NoError(t, publisher.Publish(ctx, notify.EventLogin, map[string]any{"uid": "uid-1", "deviceCount": 2}))
	channel, msg := receive()
	require.Equal(t, "events", channel)
	require.Equal(t, notify.EventLogin, msg.Event)
	require.Equal(t, now.UnixMilli(), msg.Timestamp)
	require.Equal(t, "uid-1", msg.Data["uid"])
	require.EqualValues(t, 2, msg.Data["deviceCount"])

	require.NoError(t, publisher.DeviceConnected(ctx, "uid-1", []*devices.Device{{ID: "d1"}, {ID: "d2"}}, "Firefox"))
	channel, msg = receive()
	require.Equal(t, "push", channel)
	require.Equal(t, notify.PushCommandDeviceConnected, msg.Event)
	require.Equal(t, []any{"d1", "d2"}, msg.Data["deviceIds"])
}

func TestSMTPMailer_SendNewDeviceLogin(t *testing.T) {
	var sent []*mail.Message
	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{Host: "localhost", Port: 25, From: "accounts@example.com"},
		notify.WithSendFunc(func(m *mail.Message) error {
			sent = append(sent, m)
			return nil
		}))
	require.NoError(t, err)

	err = mailer.SendNewDeviceLogin(context.Background(), notify.NewDeviceLogin{
		To:         "a@example.com",
		Locale:     "fr",
		DeviceName: "Firefox on Android",
		Location:   geo.Location{City: "Paris", Country: "France"},
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Equal(t, []string{"a@example.com"}, sent[0].GetHeader("To"))
	require.Equal(t, []string{"accounts@example.com"}, sent[0].GetHeader("From"))
	require.Equal(t, []string{"fr"}, sent[0].GetHeader("Content-Language"))

	require.Error(t, mailer.SendNewDeviceLogin(context.Background(), notify.NewDeviceLogin{}))

	_, err = notify.NewSMTPMailer(notify.SMTPConfig{})
	require.Error(t, err)
}

func TestSMTPMailer_DefaultDialer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	for _, mode := range []string{"none", "ssl", ""} {
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{Host: "127.0.0.1", Port: port, From: "accounts@example.com", TLSMode: mode})
		require.NoError(t, err)

		err = mailer.SendNewDeviceLogin(context.Background(), notify.NewDeviceLogin{To: "a@example.com"})
		require.Error(t, err, mode)
		require.Contains(t, err.Error(), "[SMTPMailer.SendNewDeviceLogin] send")
	}
}
