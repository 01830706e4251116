// Package jobs runs the dispensary's scheduled work: the morning low-stock
// alert and the nightly sales export.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
)

// Job holds schedule and run function.
type Job struct {
	Schedule string
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs map[string]Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(), jobs: make(map[string]Job)}
}

// Register adds a job under a unique, case-insensitive name. The schedule
// is a standard five-field cron expression.
func (s *Scheduler) Register(name, schedule string, run func(ctx context.Context) error) error {
	name = strings.ToLower(name)
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("duplicate job %s", name)
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", name, schedule, err)
	}
	s.jobs[name] = Job{Schedule: schedule, Run: run}
	return nil
}

// Names lists registered jobs alphabetically.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow executes one job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	j, ok := s.jobs[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	return j.Run(ctx)
}

// Start schedules every registered job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, name := range s.Names() {
		name, j := name, s.jobs[name]
		_, err := s.cron.AddFunc(j.Schedule, func() {
			log.Printf("Running cron job: %s", name)
			if err := j.Run(ctx); err != nil {
				log.Printf("cron job %s failed: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to register job %s: %w", name, err)
		}
	}
	s.cron.Start()
	return nil
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
