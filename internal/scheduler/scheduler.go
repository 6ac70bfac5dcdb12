// Package scheduler runs the league housekeeping jobs on cron schedules
// evaluated in the league timezone.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
	ErrDuplicateJob   = errors.New("job already registered")
)

var (
	service     *Service
	serviceOnce sync.Once
	serviceErr  error
)

// Service owns the process-wide gocron scheduler and the jobs added to it.
type Service struct {
	scheduler gocron.Scheduler
	location  *time.Location

	mu   sync.Mutex
	jobs map[string]gocron.Job

	stopOnce sync.Once
	stopErr  error
}

// Init creates the scheduler singleton. Cron expressions of every job are
// read in loc; a nil loc means time.Local. Later calls are no-ops.
func Init(loc *time.Location) error {
	serviceOnce.Do(func() {
		service, serviceErr = newService(loc)
		if serviceErr == nil {
			log.Info().Str("timezone", service.location.String()).Msg("Scheduler initialized")
		}
	})
	return serviceErr
}

func newService(loc *time.Location) (*Service, error) {
	if loc == nil {
		loc = time.Local
	}
	onPanic := gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
		log.Error().
			Str("job_id", jobID.String()).
			Str("job_name", jobName).
			Interface("panic", recoverData).
			Msg("Scheduled job panicked")
	})
	sched, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithGlobalJobOptions(gocron.WithEventListeners(onPanic)),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Service{
		scheduler: sched,
		location:  loc,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

func instance() (*Service, error) {
	if service == nil && serviceErr == nil {
		return nil, ErrNotInitialized
	}
	return service, serviceErr
}

// Start runs the singleton's jobs.
func Start() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	svc.Start()
	return nil
}

// Stop shuts the singleton down.
func Stop() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	return svc.Stop()
}

// AddJob adds a cron job to the singleton.
func AddJob(name, cronExpr string, task func(), opts ...gocron.JobOption) (gocron.Job, error) {
	svc, err := instance()
	if err != nil {
		return nil, err
	}
	return svc.AddJob(name, cronExpr, task, opts...)
}

func (s *Service) Start() {
	if s == nil {
		log.Error().Msg("Scheduler start requested before initialization")
		return
	}
	log.Info().Strs("jobs", s.JobNames()).Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop waits for running jobs and prevents new runs. It is safe to call more
// than once.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers task under a unique name. A run that is still going when
// the next tick fires is rescheduled rather than overlapped, unless opts pick
// another singleton mode.
func (s *Service) AddJob(name, cronExpr string, task func(), opts ...gocron.JobOption) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	cronExpr = strings.TrimSpace(cronExpr)
	if cronExpr == "" {
		return nil, ErrEmptyCronExpr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()
	jobOptions := append([]gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}, opts...)
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			jobLogger.Debug().Msg("Scheduled job started")
			task()
		}),
		jobOptions...,
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduled job")
		return nil, err
	}
	s.jobs[name] = job
	jobLogger.Info().Msg("Scheduled job registered")
	return job, nil
}

// JobNames lists the registered jobs in name order.
func (s *Service) JobNames() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
