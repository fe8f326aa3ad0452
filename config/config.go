package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		OutboxRelay     OutboxRelay
		Kafka           Kafka
		KafkaController KafkaController
		Frontend        Frontend
		Import          Import
		Submit          Submit
		Redis           Redis
		RateLimit       RateLimit
		SMS             SMS
		Swagger         Swagger
	}

	HTTP struct {
		Port           string   `env:"HTTP_PORT,required"`
		UsePreforkMode bool     `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		BodyLimit      int      `env:"HTTP_BODY_LIMIT" envDefault:"41943040"` // 40MB
		AllowOrigins   []string `env:"HTTP_CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:8000"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		CreateBucket   bool          `env:"S3_CREATE_BUCKET" envDefault:"false"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS,required"`
		GroupID string   `env:"KAFKA_GROUP_ID,required"`
		Topic   string   `env:"KAFKA_TOPIC,required"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"30s"` // one event: S3 round trips and db writes
		CPUTimeout      time.Duration `env:"KAFKA_CONTROLLER_CPU_TIMEOUT" envDefault:"8s"`      // one thumbnail
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		RetryAttempts   int           `env:"KAFKA_CONTROLLER_RETRY_ATTEMPTS" envDefault:"3"`
		RetryBackoff    time.Duration `env:"KAFKA_CONTROLLER_RETRY_BACKOFF" envDefault:"500ms"`
	}

	Frontend struct {
		BaseURL string `env:"FRONTEND_BASE_URL,required"`
	}

	Import struct {
		MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" envDefault:"5242880"` // 5MB
	}

	Submit struct {
		MaxPhotoSize int64 `env:"SUBMIT_MAX_PHOTO_SIZE" envDefault:"4194304"` // 4MB decoded
	}

	Redis struct {
		URL string `env:"REDIS_URL"` // empty disables rate limiting
	}

	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
		Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	}

	SMS struct {
		Enabled            bool   `env:"SMS_ENABLED" envDefault:"false"`
		Region             string `env:"SMS_REGION" envDefault:"ap-south-1"`
		Endpoint           string `env:"SMS_ENDPOINT"`
		AccessKey          string `env:"SMS_ACCESS_KEY"`
		SecretKey          string `env:"SMS_SECRET_KEY"`
		SenderID           string `env:"SMS_SENDER_ID" envDefault:"BGVCHK"`
		DefaultCountryCode string `env:"SMS_DEFAULT_COUNTRY_CODE" envDefault:"+91"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if minLimit := MinBodyLimit(cfg.Submit.MaxPhotoSize); cfg.HTTP.BodyLimit < minLimit {
		return nil, fmt.Errorf("config error: HTTP_BODY_LIMIT must be at least %d bytes for SUBMIT_MAX_PHOTO_SIZE=%d", minLimit, cfg.Submit.MaxPhotoSize)
	}

	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("config error: RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if cfg.KafkaController.RetryAttempts < 1 {
		return nil, fmt.Errorf("config error: KAFKA_CONTROLLER_RETRY_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

const (
	maxSubmittedPhotos = 6
	formFieldsSlack    = 1024 * 1024
)

// MinBodyLimit is the smallest request body that still fits six photos of
// maxPhotoSize bytes sent as base64 in JSON, plus the form fields.
func MinBodyLimit(maxPhotoSize int64) int {
	encoded := (maxPhotoSize + 2) / 3 * 4

	return int(maxSubmittedPhotos*encoded + formFieldsSlack)
}
