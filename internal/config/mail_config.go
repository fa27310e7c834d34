package config

type Mail struct{}

var _ MailConfig = Mail{}

func (Mail) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "localhost")
}

func (Mail) GetSmtpPort() int {
	return GetEnvInt("SMTP_PORT", 587)
}

func (Mail) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Mail) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}

func (Mail) GetSmtpSender() string {
	return GetEnv("SMTP_SENDER", "accounts@localhost")
}

// GetSmtpTLSMode is one of "starttls", "ssl" or "none".
func (Mail) GetSmtpTLSMode() string {
	return GetEnv("SMTP_TLS_MODE", "starttls")
}
