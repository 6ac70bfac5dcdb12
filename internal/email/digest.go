package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/ottawafunsports/ofsl/internal/schedule"
)

type Message struct {
	Subject string
	Body    string
}

// DigestDetails is the week of a league a digest describes. TotalWeeks is 0
// when the season has no end date.
type DigestDetails struct {
	LeagueName string
	WeekNumber int
	TotalWeeks int
	PlayDate   time.Time
	BaseURL    string
	LeagueID   int64
	Tiers      []schedule.Tier
}

// FormatPlayDate renders a play date the way digests show it.
func FormatPlayDate(date time.Time) string {
	if date.IsZero() {
		return "TBD"
	}
	return date.Format("Monday, Jan 2, 2006")
}

// BuildWeeklyDigest renders the lineup of every tier in a week as plain text.
// Only the positions a tier's format uses are listed; empty ones read "open".
func BuildWeeklyDigest(details DigestDetails) Message {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "Your league"
	}

	weekLabel := fmt.Sprintf("Week %d", details.WeekNumber)
	if details.TotalWeeks > 0 {
		weekLabel = fmt.Sprintf("Week %d of %d", details.WeekNumber, details.TotalWeeks)
	}

	subject := fmt.Sprintf("%s - %s schedule", leagueName, weekLabel)
	if details.IsPlayoffWeek() {
		subject = fmt.Sprintf("%s - %s playoff schedule", leagueName, weekLabel)
	}

	lines := []string{
		fmt.Sprintf("%s schedule for %s.", weekLabel, leagueName),
		fmt.Sprintf("Date: %s", FormatPlayDate(details.PlayDate)),
		"",
	}

	if len(details.Tiers) == 0 {
		lines = append(lines, "No tiers are scheduled for this week yet.")
	}
	for _, tier := range details.Tiers {
		lines = append(lines, tierHeading(tier))
		for _, position := range tier.ActivePositions() {
			slot := tier.Positions[position]
			team := "open"
			if !slot.IsEmpty() {
				team = slot.Name
				if slot.Ranking > 0 {
					team = fmt.Sprintf("%s (#%d)", slot.Name, slot.Ranking)
				}
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", position, team))
		}
		lines = append(lines, "")
	}

	if baseURL := strings.TrimRight(strings.TrimSpace(details.BaseURL), "/"); baseURL != "" && details.LeagueID > 0 {
		lines = append(lines, fmt.Sprintf("Full schedule: %s/api/v1/leagues/%d/schedule?week=%d", baseURL, details.LeagueID, details.WeekNumber))
	}

	return Message{
		Subject: subject,
		Body:    strings.TrimRight(strings.Join(lines, "\n"), "\n"),
	}
}

// IsPlayoffWeek reports whether any tier of the week is a playoff tier.
func (d DigestDetails) IsPlayoffWeek() bool {
	for _, tier := range d.Tiers {
		if tier.IsPlayoff {
			return true
		}
	}
	return false
}

func tierHeading(tier schedule.Tier) string {
	parts := []string{fmt.Sprintf("Tier %d", tier.TierNumber)}
	for _, detail := range []string{schedule.FormatLabel(tier.Format), tier.Location, tier.Court, tier.TimeSlot} {
		if detail = strings.TrimSpace(detail); detail != "" {
			parts = append(parts, detail)
		}
	}
	return strings.Join(parts, " | ")
}
