// Package cleanup periodically removes expired aliases. Expired rows are
// already invisible to lookups, so the job only reclaims space.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/robfig/cron/v3"
)

const runTimeout = time.Minute

// Cleaner is implemented by services.AliasService.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type Job struct {
	cron    *cron.Cron
	cleaner Cleaner
	logger  logging.Logger
}

// New schedules cleaner on the cron spec. Specs accept an optional seconds
// field and descriptors such as "@every 1h".
func New(spec string, cleaner Cleaner, l logging.Logger) (*Job, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	j := &Job{
		cron:    cron.New(cron.WithParser(parser)),
		cleaner: cleaner,
		logger:  l.With("module", "cleanup"),
	}
	if _, err := j.cron.AddFunc(spec, j.runOnce); err != nil {
		return nil, fmt.Errorf("invalid cron pattern: %w", err)
	}
	return j, nil
}

func (j *Job) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := j.cleaner.Cleanup(ctx); err != nil {
		j.logger.Warn(ctx, "cleanup run failed", "error", err)
	}
}

// Run starts the scheduler and blocks until ctx is done and any running job
// has finished.
func (j *Job) Run(ctx context.Context) {
	j.cron.Start()
	j.logger.Info(ctx, "cleanup scheduled")
	<-ctx.Done()
	<-j.cron.Stop().Done()
}
