package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr        string `env:"ADDR" env-default:"127.0.0.1:8080"`
	LogDir      string `env:"LOG_DIR" env-default:"logs"`
	DatabaseURL string `env:"DATABASE_URL"` // empty means in-memory stores

	CheckTimeout    time.Duration `env:"CHECK_TIMEOUT" env-default:"10s"`
	Concurrency     int           `env:"WORKER_CONCURRENCY" env-default:"5"`
	QueueSize       int           `env:"QUEUE_SIZE" env-default:"64"`
	JobMaxAttempts  int           `env:"JOB_MAX_ATTEMPTS" env-default:"3"`
	JobRetryBackoff time.Duration `env:"JOB_RETRY_BACKOFF" env-default:"1m"`

	// VerifyTLS switches the HTTP probe to strict certificate validation.
	// Off by default so a broken cert does not mask an otherwise-live origin.
	VerifyTLS bool `env:"VERIFY_TLS" env-default:"false"`

	SSLExpiryThresholdDays    int `env:"SSL_EXPIRY_THRESHOLD_DAYS" env-default:"14"`
	DomainExpiryThresholdDays int `env:"DOMAIN_EXPIRY_THRESHOLD_DAYS" env-default:"14"`

	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN" env-default:"120"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"` // global webhook fallback

	Mail MailConfig
}

type MailConfig struct {
	Host string `env:"MAIL_HOST"` // empty disables email notifications
	Port int    `env:"MAIL_PORT" env-default:"2525"`
	User string `env:"MAIL_USER"`
	Pass string `env:"MAIL_PASS"`
	From string `env:"MAIL_FROM" env-default:"no-reply@example.com"`
	To   string `env:"ALERT_EMAIL_TO" env-default:"alerts@example.com"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.JobMaxAttempts < 1 {
		cfg.JobMaxAttempts = 1
	}
	return cfg, nil
}
