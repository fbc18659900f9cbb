package services

import (
	"fmt"
	"sync"

	"hotel-pms/models"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Fixed schedules; the night audit schedule comes from the automation config.
const (
	NoShowSchedule         = "0 0 * * * *"
	DynamicPricingSchedule = "0 30 * * * *"
	OTASyncSchedule        = "0 */15 * * * *"
)

// Scheduler runs the automation jobs on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	automation *AutomationService

	mu      sync.Mutex
	entries []scheduledJob
}

type scheduledJob struct {
	id   cron.EntryID
	job  string
	spec string
}

func NewScheduler(automation *AutomationService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithParser(cronParser)),
		automation: automation,
	}
}

// Start registers the jobs for cfg and starts the cron loop.
func (s *Scheduler) Start(cfg models.AutomationConfig) error {
	log.Println("Starting automation scheduler...")
	if err := s.Reload(cfg); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("✓ Automation scheduler started")
	return nil
}

// Reload replaces every registered job with the schedules in cfg.
func (s *Scheduler) Reload(cfg models.AutomationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		s.cron.Remove(e.id)
	}
	s.entries = s.entries[:0]

	jobs := []struct {
		spec string
		job  string
	}{
		{NoShowSchedule, models.JobNoShow},
		{cfg.NightAuditSchedule, models.JobNightAudit},
		{DynamicPricingSchedule, models.JobDynamicPricing},
		{OTASyncSchedule, models.JobOTASync},
	}
	for _, j := range jobs {
		job := j.job
		id, err := s.cron.AddFunc(j.spec, func() { s.automation.RunScheduled(job) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s (%q): %w", job, j.spec, err)
		}
		s.entries = append(s.entries, scheduledJob{id: id, job: job, spec: j.spec})
		log.WithFields(log.Fields{"job": job, "schedule": j.spec}).Info("✓ Scheduled automation job")
	}
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping automation scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Automation scheduler stopped")
}

// Entries reports the schedule and next run of every registered job.
func (s *Scheduler) Entries() []map[string]interface{} {
	s.mu.Lock()
	jobs := make([]scheduledJob, len(s.entries))
	copy(jobs, s.entries)
	s.mu.Unlock()

	out := make([]map[string]interface{}, 0, len(jobs))
	for _, j := range jobs {
		e := s.cron.Entry(j.id)
		out = append(out, map[string]interface{}{
			"job":      j.job,
			"schedule": j.spec,
			"next_run": e.Next,
			"prev_run": e.Prev,
		})
	}
	return out
}
