package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler abstracts the timing primitive so tests can drive jobs
// with a fake instead of wall-clock cron.
type Scheduler interface {
	// EveryAt runs fn at the given "HH:MM" times on business days.
	EveryAt(times []string, fn func()) error
	// DailyAt runs fn at the given "HH:MM" time every day.
	DailyAt(at string, fn func()) error
	// EveryInterval runs fn on a fixed interval.
	EveryInterval(interval time.Duration, fn func()) error
	// Stop halts all scheduled jobs before process exit.
	Stop()
}

// cronScheduler implements Scheduler on robfig/cron.
type cronScheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewCronScheduler builds and starts a cron-backed scheduler.
func NewCronScheduler(logger *zap.Logger) Scheduler {
	c := cron.New()
	c.Start()
	return &cronScheduler{cron: c, logger: logger}
}

func (s *cronScheduler) EveryAt(times []string, fn func()) error {
	for _, at := range times {
		spec, err := specAt(at, "1-5")
		if err != nil {
			return err
		}
		if _, err := s.cron.AddFunc(spec, fn); err != nil {
			return fmt.Errorf("schedule %q: %w", at, err)
		}
		s.logger.Info("job scheduled", zap.String("spec", spec))
	}
	return nil
}

func (s *cronScheduler) DailyAt(at string, fn func()) error {
	spec, err := specAt(at, "*")
	if err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("schedule %q: %w", at, err)
	}
	s.logger.Info("job scheduled", zap.String("spec", spec))
	return nil
}

func (s *cronScheduler) EveryInterval(interval time.Duration, fn func()) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.logger.Info("job scheduled", zap.String("spec", spec))
	return nil
}

// Stop waits for the running jobs to finish before returning.
func (s *cronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// specAt converts an "HH:MM" time of day into a cron spec with the
// given day-of-week field.
func specAt(at, dow string) (string, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time of day %q", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, dow), nil
}
