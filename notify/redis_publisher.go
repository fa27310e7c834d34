package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-oauth-grants/devices"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Default channels
const (
	AttachedServicesChannel = "account-events"
	PushChannel             = "device-push"
)

// PushCommandDeviceConnected is the push command for a newly connected device.
const PushCommandDeviceConnected = "fxaccounts:device_connected"

var (
	_ AttachedServices = (*RedisPublisher)(nil)
	_ Pusher           = (*RedisPublisher)(nil)
)

// Message is the envelope written to the channels.
type Message struct {
	Event     string         `json:"event"`
	Timestamp int64          `json:"ts"`
	Data      map[string]any `json:"data"`
}

// RedisPublisher fans account events and push jobs out over Redis pub/sub.
// Delivery to the end services is done by their own subscribers.
type RedisPublisher struct {
	client       redis.UniversalClient
	eventChannel string
	pushChannel  string
	nowFunc      func() time.Time
}

// RedisPublisherOption configures a RedisPublisher.
type RedisPublisherOption func(*RedisPublisher)

// WithChannels overrides the event and push channel names.
func WithChannels(events, push string) RedisPublisherOption {
	return func(p *RedisPublisher) {
		p.eventChannel = events
		p.pushChannel = push
	}
}

// WithPublisherClock sets the clock (primarily for testing).
func WithPublisherClock(now func() time.Time) RedisPublisherOption {
	return func(p *RedisPublisher) {
		p.nowFunc = now
	}
}

func NewRedisPublisher(client redis.UniversalClient, options ...RedisPublisherOption) *RedisPublisher {
	p := &RedisPublisher{
		client:       client,
		eventChannel: AttachedServicesChannel,
		pushChannel:  PushChannel,
		nowFunc:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Publish implements AttachedServices.
func (p *RedisPublisher) Publish(ctx context.Context, event string, payload map[string]any) error {
	zerolog.Ctx(ctx).Debug().Str("event", event).Msg("notify attached services")
	return errors.Wrap(p.publish(ctx, p.eventChannel, event, payload), "[RedisPublisher.Publish]")
}

// DeviceConnected implements Pusher.
func (p *RedisPublisher) DeviceConnected(ctx context.Context, uid string, recipients []*devices.Device, deviceName string) error {
	ids := make([]string, 0, len(recipients))
	for _, d := range recipients {
		ids = append(ids, d.ID)
	}
	err := p.publish(ctx, p.pushChannel, PushCommandDeviceConnected, map[string]any{
		"uid":        uid,
		"deviceIds":  ids,
		"deviceName": deviceName,
	})
	return errors.Wrap(err, "[RedisPublisher.DeviceConnected]")
}

func (p *RedisPublisher) publish(ctx context.Context, channel, event string, data map[string]any) error {
	raw, err := json.Marshal(Message{Event: event, Timestamp: p.nowFunc().UnixMilli(), Data: data})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, raw).Err()
}
