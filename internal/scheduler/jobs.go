package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/config"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/email"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

const (
	completeWeeksJobName = "complete_past_weeks"
	weeklyDigestJobName  = "weekly_schedule_digest"
	jobTimeout           = 2 * time.Minute
)

var now = time.Now

// DigestOptions controls which week a digest run announces.
type DigestOptions struct {
	// Days between the run and the play date being announced.
	LeadDays int
	BaseURL  string
}

// RegisterScheduleJobs adds the week completion and digest jobs to the
// singleton scheduler. The digest job is skipped when sender is nil.
func RegisterScheduleJobs(database *appdb.DB, sender email.EmailSender, cfg *config.Config) error {
	if database == nil {
		return errors.New("database is required")
	}
	if cfg == nil {
		return errors.New("config is required")
	}
	loc := cfg.Location()

	if err := addScheduledJob(completeWeeksJobName, cfg.Jobs.CompleteWeeksCron, func(ctx context.Context) error {
		_, err := CompletePastWeeks(ctx, database, loc, now())
		return err
	}); err != nil {
		return err
	}

	if sender == nil {
		log.Info().Str("job_name", weeklyDigestJobName).Msg("Email disabled, weekly digest job not registered")
		return nil
	}
	opts := DigestOptions{LeadDays: cfg.Jobs.DigestLeadDays, BaseURL: cfg.App.BaseURL}
	return addScheduledJob(weeklyDigestJobName, cfg.Jobs.DigestCron, func(ctx context.Context) error {
		_, err := SendWeeklyDigests(ctx, database, sender, loc, now(), opts)
		return err
	})
}

func addScheduledJob(name, cronExpr string, run func(ctx context.Context) error) error {
	jobLogger := log.With().
		Str("component", "schedule_jobs").
		Str("job_name", name).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(name, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		start := time.Now()
		if err := run(ctx); err != nil {
			jobLogger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Scheduled job failed")
			return
		}
		jobLogger.Debug().Dur("elapsed", time.Since(start)).Msg("Scheduled job finished")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("register %s job: %w", name, err)
	}
	return nil
}

// CompletePastWeeks marks the tiers of every active league week that has
// finished as completed. It returns how many tiers changed.
func CompletePastWeeks(ctx context.Context, database *appdb.DB, loc *time.Location, at time.Time) (int64, error) {
	logger := log.Ctx(ctx)
	at = at.In(loc)

	leagues, err := database.Queries.ListActiveLeagues(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active leagues: %w", err)
	}

	var total int64
	var errs []error
	for _, league := range leagues {
		season, err := league.Season(loc)
		if err != nil {
			logger.Warn().Err(err).Int64("league_id", league.ID).Msg("Skipping league with invalid season dates")
			continue
		}
		if season.StartDate == nil {
			continue
		}

		weeks, err := database.Queries.ListOpenWeekNumbers(ctx, league.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("league %d: list open weeks: %w", league.ID, err))
			continue
		}
		for _, week := range weeks {
			if schedule.GetWeekStatus(int(week), season, at) != schedule.WeekPast {
				continue
			}
			changed, err := database.Queries.MarkWeekCompleted(ctx, appdb.MarkWeekCompletedParams{
				LeagueID:   league.ID,
				WeekNumber: week,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("league %d week %d: %w", league.ID, week, err))
				continue
			}
			total += changed
			logger.Info().
				Int64("league_id", league.ID).
				Int64("week", week).
				Int64("tiers", changed).
				Msg("Week marked completed")
		}
	}
	return total, errors.Join(errs...)
}

// SendWeeklyDigests emails each active league's contact the lineup of the week
// played opts.LeadDays from at. Leagues without a contact, a start date or a
// play day are skipped, as are weeks with no tiers. It returns how many
// digests were sent.
func SendWeeklyDigests(ctx context.Context, database *appdb.DB, sender email.EmailSender, loc *time.Location, at time.Time, opts DigestOptions) (int, error) {
	logger := log.Ctx(ctx)
	if sender == nil {
		return 0, nil
	}
	at = at.In(loc)
	target := at.AddDate(0, 0, opts.LeadDays)

	leagues, err := database.Queries.ListActiveLeagues(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active leagues: %w", err)
	}

	sent := 0
	var errs []error
	for _, league := range leagues {
		if strings.TrimSpace(league.ContactEmail) == "" {
			continue
		}
		season, err := league.Season(loc)
		if err != nil {
			logger.Warn().Err(err).Int64("league_id", league.ID).Msg("Skipping league with invalid season dates")
			continue
		}
		week, playDate, ok := weekPlayedOn(season, target)
		if !ok {
			continue
		}

		rows, err := database.Queries.ListWeekTiers(ctx, appdb.ListWeekTiersParams{LeagueID: league.ID, WeekNumber: int64(week)})
		if err != nil {
			errs = append(errs, fmt.Errorf("league %d: list week tiers: %w", league.ID, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		tiers := make([]schedule.Tier, 0, len(rows))
		for _, row := range rows {
			tiers = append(tiers, row.Tier())
		}

		totalWeeks, _ := schedule.TotalWeeks(season)
		message := email.BuildWeeklyDigest(email.DigestDetails{
			LeagueName: league.Name,
			WeekNumber: week,
			TotalWeeks: totalWeeks,
			PlayDate:   playDate,
			BaseURL:    opts.BaseURL,
			LeagueID:   league.ID,
			Tiers:      tiers,
		})
		if err := email.SendWeeklyDigest(ctx, sender, league.ContactEmail, message); err != nil {
			errs = append(errs, fmt.Errorf("league %d: send digest: %w", league.ID, err))
			continue
		}
		sent++
		logger.Info().Int64("league_id", league.ID).Int("week", week).Msg("Weekly digest sent")
	}
	return sent, errors.Join(errs...)
}

// weekPlayedOn finds the season week whose play date falls on date's calendar
// day.
func weekPlayedOn(season schedule.Season, date time.Time) (int, time.Time, bool) {
	if season.StartDate == nil || season.DayOfWeek == nil {
		return 0, time.Time{}, false
	}
	days := schedule.DaysBetween(*season.StartDate, date)
	if days < 0 {
		return 0, time.Time{}, false
	}

	week := days/7 + 1
	if total, ok := schedule.TotalWeeks(season); ok && week > total {
		return 0, time.Time{}, false
	}
	playDate, ok := schedule.PlayDate(season, week)
	if !ok {
		return 0, time.Time{}, false
	}
	if schedule.DaysBetween(playDate, date) != 0 {
		return 0, time.Time{}, false
	}
	return week, playDate, true
}
