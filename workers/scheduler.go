package workers

import (
	"context"
	"fmt"
	"time"

	"agentgift-service/logger"
	"agentgift-service/models"

	"github.com/go-co-op/gocron/v2"
)

const (
	jobBanSweep    = "ban_sweep"
	jobAnomalyScan = "anomaly_scan"
)

type BanSweeper interface {
	DeleteExpiredBans(ctx context.Context, now time.Time) (int64, error)
}

type AnomalyDetector interface {
	Anomalies(ctx context.Context, hours int) ([]models.EmotionalAnomaly, error)
}

type JobObserver interface {
	ObserveJobRun(job string, err error)
}

type SchedulerConfig struct {
	BanSweepInterval    time.Duration
	AnomalyScanInterval time.Duration
	// AnomalyWindowHours is how far back each scan looks.
	AnomalyWindowHours int
}

// Scheduler runs the periodic maintenance jobs on gocron.
type Scheduler struct {
	sched     gocron.Scheduler
	bans      BanSweeper
	anomalies AnomalyDetector
	observer  JobObserver
	cfg       SchedulerConfig
}

func NewScheduler(bans BanSweeper, anomalies AnomalyDetector, observer JobObserver, cfg SchedulerConfig) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if cfg.AnomalyWindowHours <= 0 {
		cfg.AnomalyWindowHours = 24
	}
	return &Scheduler{sched: sched, bans: bans, anomalies: anomalies, observer: observer, cfg: cfg}, nil
}

// Start registers both jobs and starts the scheduler. Jobs stop when ctx is cancelled or Shutdown runs.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) error
	}{
		{jobBanSweep, s.cfg.BanSweepInterval, s.SweepExpiredBans},
		{jobAnomalyScan, s.cfg.AnomalyScanInterval, s.ScanAnomalies},
	}

	for _, j := range jobs {
		if j.interval <= 0 {
			logger.Warn("Job disabled", "job", j.name)
			continue
		}
		_, err := s.sched.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(func() {
				err := j.run(ctx)
				if err != nil {
					logger.Error("Scheduled job failed", "job", j.name, "error", err)
				}
				if s.observer != nil {
					s.observer.ObserveJobRun(j.name, err)
				}
			}),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register %s: %w", j.name, err)
		}
	}

	s.sched.Start()
	logger.Info("Scheduler started", "ban_sweep", s.cfg.BanSweepInterval.String(), "anomaly_scan", s.cfg.AnomalyScanInterval.String())
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// SweepExpiredBans deletes feature bans whose expiry has passed.
func (s *Scheduler) SweepExpiredBans(ctx context.Context) error {
	n, err := s.bans.DeleteExpiredBans(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Expired feature bans removed", "count", n)
	}
	return nil
}

// ScanAnomalies logs every user flagged by the emotional anomaly query.
func (s *Scheduler) ScanAnomalies(ctx context.Context) error {
	found, err := s.anomalies.Anomalies(ctx, s.cfg.AnomalyWindowHours)
	if err != nil {
		return err
	}
	for _, a := range found {
		logger.Warn("Emotional anomaly detected", "user_id", a.UserID, "signatures", a.Signatures,
			"avg_confidence", a.AvgConfidence, "last_seen", a.LastSeen)
	}
	return nil
}
