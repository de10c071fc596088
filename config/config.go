package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fern-api"`
	Version                       string   `env:"APP_VERSION" env-default:"dev"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PATCH,DELETE"`

	// Storage. Backend picks where records, uploads and generated documents
	// live: "local" writes under StorageRoot, "s3" targets an S3-compatible
	// endpoint.
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"local"`
	StorageRoot    string `env:"STORAGE_ROOT" env-default:"./data"`
	S3Endpoint     string `env:"S3_ENDPOINT" env-default:""`
	S3AccessKey    string `env:"S3_ACCESS_KEY" env-default:""`
	S3SecretKey    string `env:"S3_SECRET_KEY" env-default:""`
	S3Bucket       string `env:"S3_BUCKET" env-default:"fern-onboarding"`
	S3Region       string `env:"S3_REGION" env-default:"us-east-1"`
	S3UseSSL       bool   `env:"S3_USE_SSL" env-default:"true"`

	// Kafka Producer settings. Empty brokers disable event emission.
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:""`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"onboarding-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TracingEnabled  bool          `env:"TRACING_ENABLED" env-default:"false"`
	TracingEndpoint string        `env:"TRACING_ENDPOINT" env-default:"localhost:4317"`
	TracingProtocol string        `env:"TRACING_PROTOCOL" env-default:"grpc"`
	TracingInsecure bool          `env:"TRACING_INSECURE" env-default:"true"`
	TracingTimeout  time.Duration `env:"TRACING_TIMEOUT" env-default:"5s"`

	// SMTP. Empty host disables outbound mail.
	SMTPHost     string `env:"SMTP_HOST" env-default:""`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" env-default:""`
	SMTPPassword string `env:"SMTP_PASSWORD" env-default:""`
	SMTPFrom     string `env:"SMTP_FROM" env-default:"onboarding@example.com"`
}

// Load reads configuration from the environment, with a local .env file
// applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
