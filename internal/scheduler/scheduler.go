// Package scheduler runs the daily report distribution on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/dillanmilo/railcore/internal/metrics"
	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// Distributor sends one project's report for a date.
type Distributor interface {
	DistributeDaily(ctx context.Context, projectID uuid.UUID, date time.Time) error
}

// Result summarizes one distribution run.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// DailyDistribution sends yesterday's daily report of every project that
// opted into automatic distribution.
type DailyDistribution struct {
	cron     *cron.Cron
	projects domain.ProjectRepository
	dist     Distributor
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
	timeout  time.Duration
	jobID    cron.EntryID
}

func New(projects domain.ProjectRepository, dist Distributor, loc *time.Location, log zerolog.Logger) *DailyDistribution {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyDistribution{
		cron:     cron.New(cron.WithLocation(loc)),
		projects: projects,
		dist:     dist,
		log:      log,
		loc:      loc,
		now:      time.Now,
		timeout:  5 * time.Minute,
	}
}

// Start schedules the job with a standard five field cron spec (or a
// descriptor like "@daily") and starts the scheduler.
func (d *DailyDistribution) Start(spec string) error {
	var err error
	d.jobID, err = d.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule daily distribution %q: %w", spec, err)
	}
	d.cron.Start()
	d.log.Info().Str("schedule", spec).Str("tz", d.loc.String()).Msg("daily distribution scheduled")
	return nil
}

// Stop halts scheduling and waits for a running job until ctx is done.
func (d *DailyDistribution) Stop(ctx context.Context) {
	done := d.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		d.log.Warn().Msg("daily distribution still running at shutdown")
	}
}

// Next reports the next scheduled run, or zero when not started.
func (d *DailyDistribution) Next() time.Time {
	if d.jobID == 0 {
		return time.Time{}
	}
	return d.cron.Entry(d.jobID).Next
}

// Run distributes the previous day's reports once.
func (d *DailyDistribution) Run(ctx context.Context) Result {
	var res Result
	date := Yesterday(d.now(), d.loc)
	projects, err := d.projects.ListAutoDistribute(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("list projects for distribution")
		return res
	}
	for _, p := range projects {
		err := d.dist.DistributeDaily(ctx, p.ID, date)
		switch {
		case err == nil:
			res.Sent++
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoDistributionList):
			res.Skipped++
			d.log.Info().Str("project_id", p.ID.String()).Err(err).Msg("daily distribution skipped")
		default:
			res.Failed++
			d.log.Error().Str("project_id", p.ID.String()).Err(err).Msg("daily distribution failed")
		}
	}
	metrics.AddScheduledOutcomes(res.Sent, res.Skipped, res.Failed)
	d.log.Info().
		Str("date", date.Format("2006-01-02")).
		Int("sent", res.Sent).Int("skipped", res.Skipped).Int("failed", res.Failed).
		Msg("daily distribution finished")
	return res
}

// Yesterday is the calendar date before now in loc, at UTC midnight.
func Yesterday(now time.Time, loc *time.Location) time.Time {
	y, m, dd := now.In(loc).AddDate(0, 0, -1).Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
