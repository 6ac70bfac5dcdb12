package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ottawafunsports/ofsl/internal/schedule"
)

// DateLayout is the storage format of league dates.
const DateLayout = "2006-01-02"

const (
	LeagueStatusDraft    = "draft"
	LeagueStatusActive   = "active"
	LeagueStatusArchived = "archived"
)

type League struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	StartDate    sql.NullString `json:"-"`
	EndDate      sql.NullString `json:"-"`
	DayOfWeek    sql.NullInt64  `json:"-"`
	ContactEmail string         `json:"contactEmail"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Season converts the stored dates into the calendar view used by the week
// arithmetic. Dates are read as calendar dates in loc.
func (l League) Season(loc *time.Location) (schedule.Season, error) {
	var season schedule.Season
	if loc == nil {
		loc = time.Local
	}
	if l.StartDate.Valid && l.StartDate.String != "" {
		start, err := time.ParseInLocation(DateLayout, l.StartDate.String, loc)
		if err != nil {
			return season, fmt.Errorf("league %d start date: %w", l.ID, err)
		}
		season.StartDate = &start
	}
	if l.EndDate.Valid && l.EndDate.String != "" {
		end, err := time.ParseInLocation(DateLayout, l.EndDate.String, loc)
		if err != nil {
			return season, fmt.Errorf("league %d end date: %w", l.ID, err)
		}
		season.EndDate = &end
	}
	if l.DayOfWeek.Valid && l.DayOfWeek.Int64 >= 0 && l.DayOfWeek.Int64 <= 6 {
		day := time.Weekday(l.DayOfWeek.Int64)
		season.DayOfWeek = &day
	}
	return season, nil
}

// TierRow is a weekly_tiers row in its flattened column layout. Names and
// Rankings are indexed in position order A..F.
type TierRow struct {
	ID          int64
	LeagueID    int64
	WeekNumber  int64
	TierNumber  int64
	Location    string
	TimeSlot    string
	Court       string
	Format      string
	Names       [len(schedule.PositionLabels)]string
	Rankings    [len(schedule.PositionLabels)]int64
	IsCompleted bool
	IsPlayoff   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record exposes the row in the flattened team_<letter>_* shape.
func (r TierRow) Record() schedule.Record {
	record := schedule.Record{"format": r.Format}
	for i, label := range schedule.PositionLabels {
		letter := strings.ToLower(string(label))
		record["team_"+letter+"_name"] = r.Names[i]
		record["team_"+letter+"_ranking"] = r.Rankings[i]
	}
	return record
}

// Tier unflattens the row into the domain tier.
func (r TierRow) Tier() schedule.Tier {
	return schedule.Tier{
		ID:          r.ID,
		LeagueID:    r.LeagueID,
		WeekNumber:  int(r.WeekNumber),
		TierNumber:  int(r.TierNumber),
		Location:    r.Location,
		TimeSlot:    r.TimeSlot,
		Court:       r.Court,
		Format:      r.Format,
		Positions:   schedule.LineupFromRecord(r.Record()),
		IsCompleted: r.IsCompleted,
		IsPlayoff:   r.IsPlayoff,
	}
}
