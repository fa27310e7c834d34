package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Event names
const (
	EventTokenCreated  = "oauth.token.created"
	EventAccountSigned = "account.signed"
)

// Emitter records a named metrics event.
type Emitter interface {
	Emit(ctx context.Context, event string, props map[string]any) error
}

var _ Emitter = (*PrometheusEmitter)(nil)

// PrometheusEmitter counts events per name and service and writes each event
// to the request log as a flow event line.
type PrometheusEmitter struct {
	events   *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// NewPrometheusEmitter registers the event counters with registry.
func NewPrometheusEmitter(registry *prometheus.Registry) (*PrometheusEmitter, error) {
	if registry == nil {
		return nil, errors.New("[NewPrometheusEmitter] registry is required")
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth_grants",
		Name:      "events_total",
		Help:      "Metrics events emitted by grant operations",
	}, []string{"event", "service"})
	if err := registry.Register(events); err != nil {
		return nil, errors.Wrap(err, "[NewPrometheusEmitter] register")
	}
	return &PrometheusEmitter{events: events, gatherer: registry}, nil
}

func (e *PrometheusEmitter) Emit(ctx context.Context, event string, props map[string]any) error {
	if event == "" {
		return errors.New("[PrometheusEmitter.Emit] event name is required")
	}
	service, _ := props["service"].(string)
	e.events.WithLabelValues(event, service).Inc()

	logEvent := zerolog.Ctx(ctx).Info().Str("op", "flowEvent").Str("event", event)
	for k, v := range props {
		logEvent = logEvent.Str(k, fmt.Sprint(v))
	}
	logEvent.Send()
	return nil
}

// Handler exposes the registry in the Prometheus text format.
func (e *PrometheusEmitter) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}
