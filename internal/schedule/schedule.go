// Package schedule runs a job on a five-field cron expression.
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

func Parse(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid run_schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Start blocks, running job at every activation of spec in loc, until ctx is
// done. Runs never overlap: the next activation is computed after the job
// returns.
func Start(ctx context.Context, spec string, loc *time.Location, job func(context.Context)) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Run scheduled (cron: %s, tz: %s)", spec, loc)
	run(ctx, sched, loc, job)
	return ctx.Err()
}

func run(ctx context.Context, sched cron.Schedule, loc *time.Location, job func(context.Context)) {
	for {
		now := time.Now().In(loc)
		next := sched.Next(now)
		if next.IsZero() {
			log.Printf("Schedule has no further activations; stopping")
			return
		}
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("Scheduler stopped: %v", ctx.Err())
			return
		case <-timer.C:
		}
		job(ctx)
	}
}
