package scheduler

import (
	"testing"

	"imobiliaria-portal/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestParseDailyRunTime(t *testing.T) {
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("03:00"))
	assert.Equal(t, "30 4 * * *", parseDailyRunTime("04:30"))
	assert.Equal(t, "59 23 * * *", parseDailyRunTime("23:59"))
	assert.Equal(t, "0 0 * * *", parseDailyRunTime("00:00"))
}

func TestParseDailyRunTimeFallsBack(t *testing.T) {
	assert.Equal(t, "0 3 * * *", parseDailyRunTime(""))
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("not-a-time"))
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("25:00"))
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("12:75"))
}

func TestStartWithNothingEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sync.DailyRunEnabled = false
	cfg.Cleanup.DailyRunEnabled = false

	s := NewScheduler(nil, nil, cfg)
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestSyncJobSkippedWithoutService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sync.DailyRunEnabled = true
	cfg.Cleanup.DailyRunEnabled = false

	// No sync service wired, the job must not be registered
	s := NewScheduler(nil, nil, cfg)
	assert.NoError(t, s.Start())
	s.Stop()
}
