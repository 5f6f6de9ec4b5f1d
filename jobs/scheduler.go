package jobs

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/config"
	"github.com/SadmanRahman12/GreenZen/utils"
)

// Scheduler owns the background jobs: leaderboard snapshot regeneration and
// eco-battle settlement.
type Scheduler struct {
	db    *gorm.DB
	sched gocron.Scheduler
}

// NewScheduler creates the job runner. Start must be called to begin.
func NewScheduler(db *gorm.DB) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{db: db, sched: sched}, nil
}

// Start registers the periodic jobs and launches the scheduler. Both jobs run
// once immediately so fresh deployments serve snapshots right away.
func (s *Scheduler) Start() error {
	refresh := time.Duration(config.Get().LeaderboardRefreshMinutes) * time.Minute

	_, err := s.sched.NewJob(
		gocron.DurationJob(refresh),
		gocron.NewTask(s.RefreshLeaderboards),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	_, err = s.sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(s.SettleEcoBattles),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.sched.Start()
	utils.Sugar.Infow("job scheduler started",
		"leaderboard_refresh", refresh.String(),
		"battle_settle_interval", time.Hour.String(),
	)
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() {
	if err := s.sched.Shutdown(); err != nil {
		utils.Sugar.Warnw("job scheduler shutdown failed", "error", err)
	}
}
