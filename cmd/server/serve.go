package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jrsteele09/go-oauth-grants/auth"
	"github.com/jrsteele09/go-oauth-grants/backend"
	"github.com/jrsteele09/go-oauth-grants/devices"
	"github.com/jrsteele09/go-oauth-grants/internal/config"
	"github.com/jrsteele09/go-oauth-grants/metrics"
	"github.com/jrsteele09/go-oauth-grants/notify"
	"github.com/jrsteele09/go-oauth-grants/server"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/jrsteele09/go-oauth-grants/token"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.New(*envFiles...)
			if err != nil {
				return err
			}
			return run(c)
		},
	}
}

func run(c config.Config) (returnError error) {
	log := newLogger(c)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if c.GetEnv() == "DEV" {
		displayAppname(c.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	defer rdb.Close()

	handler, err := buildServer(ctx, c, rdb, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv, log)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	return shutdown(srv)
}

func buildServer(ctx context.Context, c config.Config, rdb redis.UniversalClient, log zerolog.Logger) (*server.Server, error) {
	prefix := c.GetRedisKeyPrefix()
	sessionRepo := sessions.NewCachedRepo(
		sessions.NewRedisRepo(rdb, sessions.WithKeyPrefix(prefix), sessions.WithTokenTTL(c.GetSessionTokenTTL())),
		c.GetAccountCacheTTL(),
	)
	deviceRegistry := devices.NewRedisRegistry(rdb, devices.WithKeyPrefix(prefix))
	publisher := notify.NewRedisPublisher(rdb)

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     c.GetSmtpHost(),
		Port:     c.GetSmtpPort(),
		User:     c.GetSmtpAccount(),
		Password: c.GetSmtpPassword(),
		From:     c.GetSmtpSender(),
		TLSMode:  c.GetSmtpTLSMode(),
	})
	if err != nil {
		return nil, err
	}
	tokenNotifier, err := notify.NewTokenNotifierService(notify.TokenNotifierDeps{
		Accounts: sessionRepo,
		Devices:  deviceRegistry,
		Mailer:   mailer,
		Pusher:   publisher,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	emitter, err := metrics.NewPrometheusEmitter(registry)
	if err != nil {
		return nil, err
	}
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, err
	}

	engine, err := backend.NewClient(c.GetBackendURL(),
		backend.WithHTTPClient(&http.Client{Timeout: c.GetBackendTimeout()}),
		backend.WithRetries(c.GetBackendMaxTries(), func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		}),
	)
	if err != nil {
		return nil, err
	}

	keySet, err := token.NewKeySet(ctx, []byte(c.GetJWKS()), c.GetJWKSURL())
	if err != nil {
		return nil, err
	}
	idTokens, err := token.NewIDTokenVerifier(c.GetIDTokenIssuer(), keySet)
	if err != nil {
		return nil, err
	}

	service, err := auth.NewService(auth.Deps{
		Engine:           engine,
		Sessions:         sessionRepo,
		Devices:          deviceRegistry,
		AttachedServices: publisher,
		TokenNotifier:    tokenNotifier,
		Metrics:          emitter,
		IDTokens:         idTokens,
	}, auth.NewClientPolicy(c.GetDisabledClients(), c.GetOldSyncClientIDs()), auth.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return server.New(c, service, sessionRepo,
		server.WithLogger(log),
		server.WithMetrics(httpMetrics, emitter.Handler()),
	)
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if c.GetEnv() == "DEV" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func listenAndServe(srv *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
