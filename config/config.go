package config

import "github.com/caarlos0/env/v6"

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`

	// Allowed CORS origins, comma separated
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Graceful shutdown budget in seconds
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" envDefault:"data/remarket.db"`
}

type ModelConfig struct {
	// Path to the trained XGBoost artifact
	ArtifactPath string `env:"MODEL_PATH" envDefault:"data/model/price_model.xgb"`

	// Path to the sidecar with feature order and categorical encodings
	MetaPath string `env:"MODEL_META_PATH" envDefault:"data/model/model_meta.yaml"`
}

type OllamaConfig struct {
	Host  string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	Model string `env:"OLLAMA_MODEL" envDefault:"nemotron-3-nano:30b-cloud"`

	// Generation and health-check budgets in seconds
	GenerateTimeout int `env:"OLLAMA_GENERATE_TIMEOUT" envDefault:"60"`
	HealthTimeout   int `env:"OLLAMA_HEALTH_TIMEOUT" envDefault:"5"`
}

type BatchConfig struct {
	// Listings re-scored between checkpoints during revaluation
	CommitSize int `env:"BATCH_COMMIT_SIZE" envDefault:"100"`

	// Import queue buffer, in batches
	QueueSize int `env:"IMPORT_QUEUE_SIZE" envDefault:"10"`

	// Listings per import batch
	ImportBatchSize int `env:"IMPORT_BATCH_SIZE" envDefault:"50"`

	// Write retries per batch before giving up
	MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

	// Seconds between write retries
	RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"1"`
}

type SchedulerConfig struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`

	// Cron specs (minute hour dom month dow)
	RevaluationSpec string `env:"REVALUATION_CRON" envDefault:"0 3 * * *"`
	DigestSpec      string `env:"DIGEST_CRON" envDefault:"0 8 * * *"`
}

type DigestConfig struct {
	// Minimum percent below the predicted price for a listing to count
	// as an opportunity
	MinDiscount float64 `env:"DIGEST_MIN_DISCOUNT" envDefault:"15"`
	Limit       int     `env:"DIGEST_LIMIT" envDefault:"10"`

	// Optional narrowing of digest picks
	Cities  []string `env:"DIGEST_CITIES" envSeparator:","`
	Listing string   `env:"DIGEST_LISTING"`
}

type TelegramConfig struct {
	Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `env:"TELEGRAM_CHAT_ID"`
}

type EmailConfig struct {
	Enabled  bool     `env:"EMAIL_ENABLED" envDefault:"false"`
	SMTPHost string   `env:"EMAIL_SMTP_HOST"`
	SMTPPort int      `env:"EMAIL_SMTP_PORT" envDefault:"587"`
	Username string   `env:"EMAIL_USERNAME"`
	Password string   `env:"EMAIL_PASSWORD"`
	From     string   `env:"EMAIL_FROM"`
	To       []string `env:"EMAIL_TO" envSeparator:","`
}

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Model     ModelConfig
	Ollama    OllamaConfig
	Batch     BatchConfig
	Scheduler SchedulerConfig
	Digest    DigestConfig
	Telegram  TelegramConfig
	Email     EmailConfig
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
