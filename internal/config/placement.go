package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// MaxOrderNumberPrefixLen keeps <prefix>-YYYYMM-<seq> within the
// VARCHAR(32) order_number column for sequences of up to 8 digits.
const MaxOrderNumberPrefixLen = 16

// PlacementConfig tunes the order placement transaction and its side channels
type PlacementConfig struct {
	OrderNumberPrefix      string
	DefaultResetDay        int
	PlacementTimeout       time.Duration
	LockTimeout            time.Duration
	MaxOrderLines          int
	SettingsCacheTTL       time.Duration
	NotificationQueue      string
	NotificationWebhookURL string
	NotificationTimeout    time.Duration
	KafkaBrokers           string
	KafkaTopic             string
}

func LoadPlacementConfig() *PlacementConfig {
	resetDay := getEnvAsInt("DEFAULT_CYCLE_RESET_DAY", 1)
	if resetDay < 1 || resetDay > 31 {
		resetDay = 1
	}

	prefix := getEnv("ORDER_NUMBER_PREFIX", "ORD")
	if len(prefix) > MaxOrderNumberPrefixLen {
		log.Printf("[CONFIG] ORDER_NUMBER_PREFIX %q is longer than %d characters, using ORD", prefix, MaxOrderNumberPrefixLen)
		prefix = "ORD"
	}

	return &PlacementConfig{
		OrderNumberPrefix:      prefix,
		DefaultResetDay:        resetDay,
		PlacementTimeout:       getEnvAsDuration("PLACEMENT_TIMEOUT", 15*time.Second),
		LockTimeout:            getEnvAsDuration("PLACEMENT_LOCK_TIMEOUT", 5*time.Second),
		MaxOrderLines:          getEnvAsInt("MAX_ORDER_LINES", 200),
		SettingsCacheTTL:       getEnvAsDuration("SETTINGS_CACHE_TTL", 5*time.Minute),
		NotificationQueue:      getEnv("NOTIFICATION_QUEUE", "order_notifications"),
		NotificationWebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),
		NotificationTimeout:    getEnvAsDuration("NOTIFICATION_TIMEOUT", 10*time.Second),
		KafkaBrokers:           getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:             getEnv("KAFKA_ORDER_TOPIC", "orders.placed"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultVal
}
