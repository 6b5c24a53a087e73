package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Event    EventConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Recorder RecorderConfig
	Operator OperatorConfig
	Approval ApprovalConfig
	Export   ExportConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type EventConfig struct {
	Code             string
	Title            string
	Date             string
	Time             string
	Venue            string
	UnitPrice        float64
	BaselineMax      int
	BaselineSold     int
	PlaceholderGuest string
}

type StorageConfig struct {
	// Driver selects the persistence adapter: "redis", "sqlite" or "memory".
	Driver     string
	SQLitePath string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type RecorderConfig struct {
	// WebhookURL is the external recording endpoint. Empty means the
	// recording step is skipped entirely, which is a valid configuration.
	WebhookURL string
	Timeout    time.Duration
}

type OperatorConfig struct {
	Token string
}

type ApprovalConfig struct {
	// ReviewDelay models the latency of the human-review step between
	// submission and the request becoming approvable.
	ReviewDelay time.Duration
}

type ExportConfig struct {
	FontPath string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Event: EventConfig{
			Code:             getEnv("EVENT_CODE", "DINALI-26"),
			Title:            getEnv("EVENT_TITLE", "Dinali In Concert"),
			Date:             getEnv("EVENT_DATE", "Saturday 27th June 2026"),
			Time:             getEnv("EVENT_TIME", "6.00pm"),
			Venue:            getEnv("EVENT_VENUE", "Pioneer Theatre, Castle Hill"),
			UnitPrice:        getEnvFloat("TICKET_PRICE", 40),
			BaselineMax:      getEnvInt("BASELINE_MAX_TICKETS", 372),
			BaselineSold:     getEnvInt("BASELINE_TICKETS_SOLD", 0),
			PlaceholderGuest: getEnv("PLACEHOLDER_GUEST", "VIP Guest"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "redis"),
			SQLitePath: getEnv("SQLITE_PATH", "boxoffice.db"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC_ISSUED", "boxoffice.ticket.issued"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Recorder: RecorderConfig{
			WebhookURL: getEnv("RECORDER_WEBHOOK_URL", ""),
			Timeout:    time.Duration(getEnvInt("RECORDER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Operator: OperatorConfig{
			Token: getEnv("OPERATOR_TOKEN", ""),
		},
		Approval: ApprovalConfig{
			ReviewDelay: time.Duration(getEnvInt("REVIEW_DELAY_MS", 1500)) * time.Millisecond,
		},
		Export: ExportConfig{
			FontPath: getEnv("EXPORT_FONT_PATH", "./fonts/DejaVuSans.ttf"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
