package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	cycleResetDayKey      = "cycle_reset_day"
	cycleResetDayCacheKey = "settings:cycle_reset_day"
)

// SettingsService reads operator settings from system_settings, with an
// optional Redis cache in front.
type SettingsService struct {
	db              *sql.DB
	redis           *redis.Client
	cacheTTL        time.Duration
	defaultResetDay int
}

func NewSettingsService(db *sql.DB, redis *redis.Client, cacheTTL time.Duration, defaultResetDay int) *SettingsService {
	if defaultResetDay < 1 || defaultResetDay > 31 {
		defaultResetDay = 1
	}
	return &SettingsService{
		db:              db,
		redis:           redis,
		cacheTTL:        cacheTTL,
		defaultResetDay: defaultResetDay,
	}
}

// CycleResetDay returns the configured billing cycle reset day (1-31).
// Missing, unreadable or out-of-range values yield the default.
func (s *SettingsService) CycleResetDay(ctx context.Context) int {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cycleResetDayCacheKey).Result()
		if err == nil {
			if day, ok := parseResetDay(cached); ok {
				return day
			}
		} else if err != redis.Nil {
			log.Printf("[SETTINGS] Cache read failed, falling back to database: %v", err)
		}
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM system_settings WHERE key = $1`, cycleResetDayKey).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[SETTINGS] Failed to read %s, using default %d: %v", cycleResetDayKey, s.defaultResetDay, err)
		}
		return s.defaultResetDay
	}

	day, ok := parseResetDay(raw)
	if !ok {
		log.Printf("[SETTINGS] Invalid %s value %q, using default %d", cycleResetDayKey, raw, s.defaultResetDay)
		return s.defaultResetDay
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cycleResetDayCacheKey, strconv.Itoa(day), s.cacheTTL).Err(); err != nil {
			log.Printf("[SETTINGS] Cache write failed: %v", err)
		}
	}
	return day
}

func parseResetDay(raw string) (int, bool) {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}
