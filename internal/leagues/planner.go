package leagues

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ottawafunsports/ofsl/internal/schedule"
)

// TierSlot is one recurring tier of a season: where and when it plays and the
// game format it starts with.
type TierSlot struct {
	Location string `json:"location"`
	TimeSlot string `json:"timeSlot"`
	Court    string `json:"court"`
	Format   string `json:"format"`
}

// PlannedTier is a tier to create for a season week.
type PlannedTier struct {
	WeekNumber int
	TierNumber int
	Location   string
	TimeSlot   string
	Court      string
	Format     string
	Positions  schedule.Lineup
}

// PlanSeason lays out every week of a dated season with one tier per slot,
// numbered in slot order. Teams are seeded into the first week by ranking,
// filling each tier up to its format's team count before moving on.
func PlanSeason(season schedule.Season, slots []TierSlot, teams []schedule.TeamSlot) ([]PlannedTier, error) {
	totalWeeks, ok := schedule.TotalWeeks(season)
	if !ok {
		return nil, errors.New("league start and end dates are required")
	}
	if totalWeeks < 1 {
		return nil, errors.New("start date must be on or before end date")
	}
	if len(slots) == 0 {
		return nil, errors.New("at least one tier slot is required")
	}

	normalized := make([]TierSlot, 0, len(slots))
	capacity := 0
	for i, slot := range slots {
		slot, err := normalizeSlot(slot)
		if err != nil {
			return nil, fmt.Errorf("tier slot %d: %w", i+1, err)
		}
		capacity += schedule.TeamCountForFormat(slot.Format)
		normalized = append(normalized, slot)
	}

	seeded, err := rankTeams(teams)
	if err != nil {
		return nil, err
	}
	if len(seeded) > capacity {
		return nil, fmt.Errorf("insufficient positions: need %d teams seated but only %d available", len(seeded), capacity)
	}

	plan := make([]PlannedTier, 0, totalWeeks*len(normalized))
	for week := 1; week <= totalWeeks; week++ {
		for idx, slot := range normalized {
			plan = append(plan, PlannedTier{
				WeekNumber: week,
				TierNumber: idx + 1,
				Location:   slot.Location,
				TimeSlot:   slot.TimeSlot,
				Court:      slot.Court,
				Format:     slot.Format,
				Positions:  schedule.NewLineup(),
			})
		}
	}

	// Week one tiers are the first len(normalized) entries.
	next := 0
	for idx := range normalized {
		tier := &plan[idx]
		for _, position := range schedule.PositionsForFormat(tier.Format) {
			if next == len(seeded) {
				return plan, nil
			}
			tier.Positions[position] = seeded[next]
			next++
		}
	}
	return plan, nil
}

func normalizeSlot(slot TierSlot) (TierSlot, error) {
	slot.Location = strings.TrimSpace(slot.Location)
	slot.Court = strings.TrimSpace(slot.Court)
	slot.Format = strings.TrimSpace(slot.Format)
	if slot.Format == "" {
		slot.Format = schedule.DefaultFormatID
	}
	if _, ok := schedule.LookupFormat(slot.Format); !ok {
		return slot, fmt.Errorf("unknown format %q", slot.Format)
	}
	if strings.TrimSpace(slot.TimeSlot) != "" {
		parsed, err := parseTimeOfDay(slot.TimeSlot)
		if err != nil {
			return slot, err
		}
		slot.TimeSlot = parsed.Format("3:04 PM")
	}
	return slot, nil
}

// rankTeams orders teams by ranking, then name. Rankings of zero or less sort
// last.
func rankTeams(teams []schedule.TeamSlot) ([]schedule.TeamSlot, error) {
	seen := make(map[string]struct{}, len(teams))
	ranked := make([]schedule.TeamSlot, 0, len(teams))
	for _, team := range teams {
		team.Name = strings.TrimSpace(team.Name)
		if team.Name == "" {
			return nil, schedule.ErrEmptyTeamName
		}
		key := strings.ToLower(team.Name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %q", schedule.ErrDuplicateTeam, team.Name)
		}
		seen[key] = struct{}{}
		ranked = append(ranked, team)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		left, right := ranked[i].Ranking, ranked[j].Ranking
		if (left > 0) != (right > 0) {
			return left > 0
		}
		if left != right {
			return left < right
		}
		return strings.ToLower(ranked[i].Name) < strings.ToLower(ranked[j].Name)
	})
	return ranked, nil
}

func parseTimeOfDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("time is required")
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		formats := []string{"3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}
		for _, format := range formats {
			if parsed, err = time.Parse(format, strings.ToUpper(raw)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.New("time must be in HH:MM or H:MM AM/PM format")
	}
	return parsed, nil
}
