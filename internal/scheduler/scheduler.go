package scheduler

import (
	"fmt"
	"log"

	"imobiliaria-portal/internal/cleanup"
	"imobiliaria-portal/internal/config"
	"imobiliaria-portal/internal/sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily CMS full sync and the retention cleanup.
type Scheduler struct {
	cron      *cron.Cron
	syncSvc   *sync.Service
	cleanup   *cleanup.Service
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a scheduler
func NewScheduler(syncSvc *sync.Service, cleanupSvc *cleanup.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		syncSvc: syncSvc,
		cleanup: cleanupSvc,
		config:  cfg,
	}
}

// Start registers the enabled jobs and starts the cron loop
func (s *Scheduler) Start() error {
	registered := 0

	if s.config.Sync.DailyRunEnabled && s.syncSvc != nil {
		cronSpec := parseDailyRunTime(s.config.Sync.DailyRunTime)
		_, err := s.cron.AddFunc(cronSpec, func() {
			log.Println("Scheduler: Starting daily CMS sync...")
			result, err := s.syncSvc.SyncAll()
			if err != nil {
				log.Printf("Scheduler: Daily sync failed: %v", err)
				return
			}
			log.Printf("Scheduler: Daily sync completed. Success: %d, Errors: %d",
				result.SuccessCount, result.ErrorCount)
		})
		if err != nil {
			return err
		}
		log.Printf("Scheduler: Daily CMS sync at %s (cron: %s)", s.config.Sync.DailyRunTime, cronSpec)
		registered++
	}

	if s.config.Cleanup.DailyRunEnabled && s.cleanup != nil {
		// Cleanup runs on a fixed early-morning slot
		_, err := s.cron.AddFunc("30 4 * * *", func() {
			log.Println("Scheduler: Starting retention cleanup...")
			cfg := cleanup.DefaultConfig()
			cfg.RetentionDays = s.config.Cleanup.RetentionDays
			cfg.MaxDeletionCount = s.config.Cleanup.MaxDeletionCount
			result, err := s.cleanup.Run(cfg)
			if err != nil {
				log.Printf("Scheduler: Cleanup failed: %v", err)
				return
			}
			log.Printf("Scheduler: Cleanup completed. Deleted: %d/%d",
				result.DeletedCount, result.TargetCount)
		})
		if err != nil {
			return err
		}
		registered++
	}

	if registered == 0 {
		log.Println("Scheduler: No scheduled jobs enabled")
		return nil
	}

	s.cron.Start()
	s.isRunning = true
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "03:00" -> "0 3 * * *" (run at 3:00 AM every day)
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}
