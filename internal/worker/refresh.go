package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/site"
)

// SiteService is the slice of the site service the refresh job needs.
type SiteService interface {
	List(ctx context.Context, tenant string, f site.Filter) ([]*site.Site, error)
	Refresh(ctx context.Context, tenant, id string) (*site.Site, error)
}

// RefreshJob walks every tenant's site registry and re-derives each
// site's metadata and associations.
type RefreshJob struct {
	config RefreshConfig
	sites  SiteService
	logger zerolog.Logger

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns         int64
	SuccessfulRefresh int64
	FailedRefreshes   int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config RefreshConfig
	Sites  SiteService
	Logger zerolog.Logger
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Tenants) == 0 {
		config.Tenants = DefaultTenants()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &RefreshJob{
		config:  config,
		sites:   cfg.Sites,
		logger:  cfg.Logger,
		metrics: &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalSites int
	Successful int
	Failed     int
	Errors     []RefreshError
}

// RefreshError records a single site that failed to refresh.
type RefreshError struct {
	Tenant string
	SiteID string
	Error  string
}

type refreshTask struct {
	tenant string
	siteID string
}

type taskResult struct {
	task refreshTask
	err  error
}

// Run refreshes every site of every configured tenant. Listing failures
// for a tenant are logged and the tenant skipped; individual site
// failures are collected without stopping the run.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	var tasks []refreshTask
	for _, tenant := range j.config.Tenants {
		sites, err := j.sites.List(ctx, tenant, site.Filter{})
		if err != nil {
			j.logger.Error().Err(err).Str("tenant", tenant).Msg("unable to list sites for refresh")
			continue
		}
		for _, s := range sites {
			tasks = append(tasks, refreshTask{tenant: tenant, siteID: s.ID})
		}
	}
	result.TotalSites = len(tasks)

	j.logger.Info().
		Int("total_sites", result.TotalSites).
		Int("concurrency", j.config.Concurrency).
		Msg("starting site refresh job")

	tasksChan := make(chan refreshTask, len(tasks))
	resultsChan := make(chan taskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, tasksChan, resultsChan)
		}()
	}

	for _, t := range tasks {
		tasksChan <- t
	}
	close(tasksChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		if tr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				Tenant: tr.task.tenant,
				SiteID: tr.task.siteID,
				Error:  tr.err.Error(),
			})
			continue
		}
		result.Successful++
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("site refresh job completed")

	return result
}

// RefreshOne refreshes a single site with the job's per-site timeout.
func (j *RefreshJob) RefreshOne(ctx context.Context, tenant, siteID string) error {
	taskCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	_, err := j.sites.Refresh(taskCtx, tenant, siteID)
	return err
}

func (j *RefreshJob) refreshWorker(ctx context.Context, tasks <-chan refreshTask, results chan<- taskResult) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			return
		default:
			err := j.RefreshOne(ctx, task.tenant, task.siteID)
			results <- taskResult{task: task, err: err}
		}
	}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		SuccessfulRefresh: j.metrics.SuccessfulRefresh,
		FailedRefreshes:   j.metrics.FailedRefreshes,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":           m.TotalRuns,
		"successful_refreshes": m.SuccessfulRefresh,
		"failed_refreshes":     m.FailedRefreshes,
		"last_run_at":          m.LastRunAt,
		"last_run_duration":    m.LastRunDuration.String(),
		"total_duration":       m.TotalDuration.String(),
	}
}
