// Package jobs runs the background maintenance work of the dashboard.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"creashort/internal/services"
)

// StatsRefresher periodically recomputes the fleet gauges so Prometheus
// scrapes stay cheap regardless of collection size.
type StatsRefresher struct {
	scheduler  gocron.Scheduler
	agents     *services.AgentService
	interval   time.Duration
	instanceID string
}

// NewStatsRefresher creates a new stats refresher running at the given
// interval.
func NewStatsRefresher(agents *services.AgentService, interval time.Duration) (*StatsRefresher, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &StatsRefresher{
		scheduler:  scheduler,
		agents:     agents,
		interval:   interval,
		instanceID: uuid.New().String(),
	}, nil
}

// Start registers the refresh job and starts the scheduler. The first
// refresh runs immediately so gauges are populated before the first scrape.
func (r *StatsRefresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register stats refresh job: %w", err)
	}

	r.scheduler.Start()
	log.Printf("⏰ Stats refresher started (instance %s, every %s)", r.instanceID[:8], r.interval)
	return nil
}

// Stop shuts down the scheduler
func (r *StatsRefresher) Stop() error {
	log.Println("⏹️ Stopping stats refresher...")
	return r.scheduler.Shutdown()
}

func (r *StatsRefresher) refresh() {
	metrics := services.GetMetrics()
	if metrics == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	total, err := r.agents.CountAgents(ctx)
	if err != nil {
		log.Printf("⚠️ Stats refresh failed: %v", err)
		return
	}
	active, err := r.agents.CountActive(ctx)
	if err != nil {
		log.Printf("⚠️ Stats refresh failed: %v", err)
		return
	}
	behind, err := r.agents.CountBehindSchedule(ctx, time.Now())
	if err != nil {
		log.Printf("⚠️ Stats refresh failed: %v", err)
		return
	}
	processing, err := r.agents.CountProcessingAttempts(ctx)
	if err != nil {
		log.Printf("⚠️ Stats refresh failed: %v", err)
		return
	}

	metrics.TotalAgents.Set(float64(total))
	metrics.ActiveAgents.Set(float64(active))
	metrics.BehindSchedule.Set(float64(behind))
	metrics.ProcessingVideos.Set(float64(processing))
}
