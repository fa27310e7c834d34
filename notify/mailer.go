package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/go-mail/mail"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ Mailer = (*SMTPMailer)(nil)

// SMTPConfig holds the outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// TLSMode is one of "starttls" (default), "ssl" or "none".
	TLSMode string
}

// SMTPMailer sends account emails through an SMTP relay.
type SMTPMailer struct {
	from string
	send func(m *mail.Message) error
}

// SMTPMailerOption configures an SMTPMailer.
type SMTPMailerOption func(*SMTPMailer)

// WithSendFunc replaces SMTP delivery (primarily for testing).
func WithSendFunc(send func(m *mail.Message) error) SMTPMailerOption {
	return func(sm *SMTPMailer) {
		sm.send = send
	}
}

func NewSMTPMailer(cfg SMTPConfig, options ...SMTPMailerOption) (*SMTPMailer, error) {
	if cfg.From == "" {
		return nil, errors.New("[NewSMTPMailer] sender address is required")
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	switch strings.ToLower(cfg.TLSMode) {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	}

	sm := &SMTPMailer{
		from: cfg.From,
		send: func(m *mail.Message) error { return d.DialAndSend(m) },
	}
	for _, opt := range options {
		opt(sm)
	}
	return sm, nil
}

// SendNewDeviceLogin implements Mailer.
func (sm *SMTPMailer) SendNewDeviceLogin(ctx context.Context, msg NewDeviceLogin) error {
	if msg.To == "" {
		return errors.New("[SMTPMailer.SendNewDeviceLogin] recipient is required")
	}

	var text, html bytes.Buffer
	if err := newDeviceLoginText.Execute(&text, msg); err != nil {
		return errors.Wrap(err, "[SMTPMailer.SendNewDeviceLogin] text template")
	}
	if err := newDeviceLoginHTML.Execute(&html, msg); err != nil {
		return errors.Wrap(err, "[SMTPMailer.SendNewDeviceLogin] html template")
	}

	m := mail.NewMessage()
	m.SetHeader("From", sm.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", "New sign-in to your account")
	m.SetHeader("X-Template-Name", "newDeviceLogin")
	if msg.Locale != "" {
		m.SetHeader("Content-Language", msg.Locale)
	}
	m.SetBody("text/plain", text.String())
	m.AddAlternative("text/html", html.String())

	if err := sm.send(m); err != nil {
		return errors.Wrap(err, "[SMTPMailer.SendNewDeviceLogin] send")
	}
	zerolog.Ctx(ctx).Info().Str("uid", msg.UID).Str("template", "newDeviceLogin").Msg("mail sent")
	return nil
}

const newDeviceLoginBody = `Your account was just used to sign in to {{if .DeviceName}}{{.DeviceName}}{{else}}a new device{{end}}{{if .Location.Country}} from {{if .Location.City}}{{.Location.City}}, {{end}}{{.Location.Country}}{{end}}.
If this was not you, change your password right away.`

var (
	newDeviceLoginText = texttemplate.Must(texttemplate.New("newDeviceLogin.txt").Parse(newDeviceLoginBody + "\n"))
	newDeviceLoginHTML = template.Must(template.New("newDeviceLogin.html").Parse("<p>" + newDeviceLoginBody + "</p>\n"))
)
