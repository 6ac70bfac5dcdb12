// cmd/ofslctl/main.go
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

const (
	dbFlag         = "db"
	migrationsFlag = "migrations"
	startFlag      = "start"
	endFlag        = "end"
	dayFlag        = "day"
	atFlag         = "at"
	timezoneFlag   = "timezone"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("ofslctl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ofslctl",
		Usage: "Operate the league schedule database and inspect schedule rules",
		Commands: []*cli.Command{
			migrateCommand(),
			{
				Name:  "formats",
				Usage: "Print the game format catalog",
				Action: func(cCtx *cli.Context) error {
					return writeYAML(cCtx.App.Writer, formatsView())
				},
			},
			weekCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: dbFlag, Usage: "Path to SQLite database", Required: true},
		&cli.StringFlag{Name: migrationsFlag, Usage: "Path to migrations directory", Value: "internal/db/migrations"},
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Flags: flags,
				Action: withMigrate(func(cCtx *cli.Context, m *migrate.Migrate) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("migration up failed: %w", err)
					}
					log.Info().Msg("Migrations applied")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back all migrations",
				Flags: flags,
				Action: withMigrate(func(cCtx *cli.Context, m *migrate.Migrate) error {
					if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("migration down failed: %w", err)
					}
					log.Info().Msg("Migrations rolled back")
					return nil
				}),
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Flags: flags,
				Action: withMigrate(func(cCtx *cli.Context, m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if err != nil {
						return fmt.Errorf("get version failed: %w", err)
					}
					_, err = fmt.Fprintf(cCtx.App.Writer, "Version: %d, Dirty: %v\n", version, dirty)
					return err
				}),
			},
		},
	}
}

func withMigrate(run func(*cli.Context, *migrate.Migrate) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		absDB, err := filepath.Abs(cCtx.String(dbFlag))
		if err != nil {
			return fmt.Errorf("invalid database path: %w", err)
		}
		absMigrations, err := filepath.Abs(cCtx.String(migrationsFlag))
		if err != nil {
			return fmt.Errorf("invalid migrations path: %w", err)
		}
		if _, err := os.Stat(absMigrations); err != nil {
			return fmt.Errorf("migrations directory: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}

		m, err := migrate.New("file://"+filepath.ToSlash(absMigrations), "sqlite3://"+filepath.ToSlash(absDB))
		if err != nil {
			return fmt.Errorf("migration init failed: %w", err)
		}
		defer m.Close()

		log.Info().Str("db", absDB).Str("migrations", absMigrations).Str("command", cCtx.Command.Name).Msg("Running migrations")
		return run(cCtx, m)
	}
}

type formatView struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	TeamCount   int      `yaml:"team_count"`
	Positions   []string `yaml:"positions"`
	GridColumns string   `yaml:"grid_columns"`
	Default     bool     `yaml:"default,omitempty"`
}

func formatsView() []formatView {
	formats := schedule.Formats()
	views := make([]formatView, 0, len(formats))
	for _, format := range formats {
		positions := schedule.PositionsForFormat(format.ID)
		names := make([]string, 0, len(positions))
		for _, position := range positions {
			names = append(names, string(position))
		}
		views = append(views, formatView{
			ID:          format.ID,
			Label:       format.Label,
			TeamCount:   format.TeamCount,
			Positions:   names,
			GridColumns: schedule.GridColumnsForTeamCount(format.TeamCount),
			Default:     format.ID == schedule.DefaultFormatID,
		})
	}
	return views
}

func weekCommand() *cli.Command {
	return &cli.Command{
		Name:  "week",
		Usage: "Show which season week the schedule displays at a moment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: startFlag, Usage: "Season start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: endFlag, Usage: "Season end date (YYYY-MM-DD)"},
			&cli.IntFlag{Name: dayFlag, Usage: "Play day, 0 (Sunday) to 6 (Saturday); negative for none", Value: -1},
			&cli.StringFlag{Name: atFlag, Usage: "Moment to evaluate (RFC 3339); defaults to now"},
			&cli.StringFlag{Name: timezoneFlag, Usage: "League timezone", Value: "America/Toronto"},
		},
		Action: func(cCtx *cli.Context) error {
			loc, err := time.LoadLocation(cCtx.String(timezoneFlag))
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			at := time.Now().In(loc)
			if raw := strings.TrimSpace(cCtx.String(atFlag)); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", atFlag, err)
				}
				at = parsed.In(loc)
			}
			view, err := weekReport(cCtx.String(startFlag), cCtx.String(endFlag), cCtx.Int(dayFlag), loc, at)
			if err != nil {
				return err
			}
			return writeYAML(cCtx.App.Writer, view)
		},
	}
}

type weekView struct {
	Week       int                 `yaml:"week"`
	Status     schedule.WeekStatus `yaml:"status"`
	TotalWeeks int                 `yaml:"total_weeks,omitempty"`
	PlayDate   string              `yaml:"play_date,omitempty"`
}

func weekReport(start, end string, day int, loc *time.Location, at time.Time) (weekView, error) {
	if day > 6 {
		return weekView{}, fmt.Errorf("--%s must be between 0 and 6", dayFlag)
	}
	league := appdb.League{
		StartDate: sql.NullString{String: strings.TrimSpace(start), Valid: strings.TrimSpace(start) != ""},
		EndDate:   sql.NullString{String: strings.TrimSpace(end), Valid: strings.TrimSpace(end) != ""},
		DayOfWeek: sql.NullInt64{Int64: int64(day), Valid: day >= 0},
	}
	season, err := league.Season(loc)
	if err != nil {
		return weekView{}, err
	}

	week := schedule.CalculateCurrentWeekToDisplay(season, at)
	view := weekView{
		Week:   week,
		Status: schedule.GetWeekStatus(week, season, at),
	}
	view.TotalWeeks, _ = schedule.TotalWeeks(season)
	if playDate, ok := schedule.PlayDate(season, week); ok {
		view.PlayDate = playDate.Format(appdb.DateLayout)
	}
	return view, nil
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}
