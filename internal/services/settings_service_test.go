package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingSQL = regexp.QuoteMeta("SELECT value FROM system_settings WHERE key = $1")

func TestSettingsService_CycleResetDay(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute

	t.Run("cached value", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		client, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet(cycleResetDayCacheKey).SetVal("5")

		service := NewSettingsService(db, client, ttl, 1)
		assert.Equal(t, 5, service.CycleResetDay(ctx))
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss reads the table and fills the cache", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		client, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet(cycleResetDayCacheKey).RedisNil()
		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(" 10 "))
		redisMock.ExpectSet(cycleResetDayCacheKey, "10", ttl).SetVal("OK")

		service := NewSettingsService(db, client, ttl, 1)
		assert.Equal(t, 10, service.CycleResetDay(ctx))
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis outage falls back to the table", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		client, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet(cycleResetDayCacheKey).SetErr(errors.New("connection refused"))
		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("15"))
		redisMock.ExpectSet(cycleResetDayCacheKey, "15", ttl).SetErr(errors.New("connection refused"))

		service := NewSettingsService(db, client, ttl, 1)
		assert.Equal(t, 15, service.CycleResetDay(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("out of range value uses the default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("32"))

		service := NewSettingsService(db, nil, ttl, 1)
		assert.Equal(t, 1, service.CycleResetDay(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-numeric value uses the default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("fifth"))

		service := NewSettingsService(db, nil, ttl, 3)
		assert.Equal(t, 3, service.CycleResetDay(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing setting uses the default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnError(sql.ErrNoRows)

		service := NewSettingsService(db, nil, ttl, 1)
		assert.Equal(t, 1, service.CycleResetDay(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid default is clamped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(settingSQL).
			WithArgs(cycleResetDayKey).
			WillReturnError(errors.New("database unavailable"))

		service := NewSettingsService(db, nil, ttl, 0)
		assert.Equal(t, 1, service.CycleResetDay(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParseResetDay(t *testing.T) {
	for raw, want := range map[string]int{"1": 1, "31": 31, " 5\n": 5} {
		day, ok := parseResetDay(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, day)
	}
	for _, raw := range []string{"", "0", "32", "-1", "5th"} {
		_, ok := parseResetDay(raw)
		assert.False(t, ok, raw)
	}
}
