package schedule

import "time"

// gameDayCutoffHour is the local hour after which a game day counts as played.
const gameDayCutoffHour = 23

const secondsPerDay = 24 * 60 * 60

// WeekStatus classifies a season week relative to now.
type WeekStatus string

const (
	WeekPast    WeekStatus = "past"
	WeekCurrent WeekStatus = "current"
	WeekFuture  WeekStatus = "future"
)

// Season is the part of a league the week arithmetic reads. Nil fields are
// unknown.
type Season struct {
	StartDate *time.Time
	EndDate   *time.Time
	DayOfWeek *time.Weekday
}

// CalculateCurrentWeekToDisplay picks the season week the schedule opens on.
// Once the play day's games are over (any later weekday, or 11pm on the play
// day itself) the following week is shown. The result is at least 1 and never
// past the last week when the season has an end date.
func CalculateCurrentWeekToDisplay(season Season, now time.Time) int {
	if season.StartDate == nil {
		return 1
	}
	today := civilDate(now)
	start := civilDate(*season.StartDate)
	if today.Before(start) {
		return 1
	}

	elapsedDays := DaysBetween(start, today)
	currentWeek := elapsedDays/7 + 1

	if season.DayOfWeek != nil {
		todayDay := int(now.Weekday())
		playDay := int(*season.DayOfWeek)
		switch {
		case todayDay > playDay:
			currentWeek++
		case todayDay == playDay && now.Hour() >= gameDayCutoffHour:
			currentWeek++
		}
	}

	if totalWeeks, ok := TotalWeeks(season); ok && currentWeek > totalWeeks {
		currentWeek = totalWeeks
	}
	if currentWeek < 1 {
		currentWeek = 1
	}
	return currentWeek
}

// GetWeekStatus classifies weekNumber as past, current or future. With a play
// day the week is current from the start of the play day until 11pm that
// night; without one it spans seven days from the week start.
func GetWeekStatus(weekNumber int, season Season, now time.Time) WeekStatus {
	if season.StartDate == nil {
		return WeekFuture
	}
	loc := now.Location()
	weekStart := weekStartDate(season, weekNumber)

	if season.DayOfWeek != nil {
		gameDate := advanceToWeekday(weekStart, *season.DayOfWeek)
		gameStart := time.Date(gameDate.Year(), gameDate.Month(), gameDate.Day(), 0, 0, 0, 0, loc)
		weekEnd := time.Date(gameDate.Year(), gameDate.Month(), gameDate.Day(), gameDayCutoffHour, 0, 0, 0, loc)
		switch {
		case now.Before(gameStart):
			return WeekFuture
		case now.After(weekEnd):
			return WeekPast
		default:
			return WeekCurrent
		}
	}

	windowStart := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, 7)
	switch {
	case now.Before(windowStart):
		return WeekFuture
	case !now.Before(windowEnd):
		return WeekPast
	default:
		return WeekCurrent
	}
}

// TotalWeeks is the inclusive number of weeks between the start and end
// dates. It reports false when either date is unknown.
func TotalWeeks(season Season) (int, bool) {
	if season.StartDate == nil || season.EndDate == nil {
		return 0, false
	}
	days := DaysBetween(*season.StartDate, *season.EndDate)
	return floorDiv(days, 7) + 1, true
}

// PlayDate returns the calendar date games are played in weekNumber: the week
// start moved forward to the play day, or the week start itself when the play
// day is unknown.
func PlayDate(season Season, weekNumber int) (time.Time, bool) {
	if season.StartDate == nil {
		return time.Time{}, false
	}
	weekStart := weekStartDate(season, weekNumber)
	if season.DayOfWeek != nil {
		weekStart = advanceToWeekday(weekStart, *season.DayOfWeek)
	}
	return weekStart, true
}

// weekStartDate returns the civil date (UTC midnight) week n begins on.
func weekStartDate(season Season, weekNumber int) time.Time {
	return civilDate(*season.StartDate).AddDate(0, 0, (weekNumber-1)*7)
}

func advanceToWeekday(date time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

// civilDate drops the clock and zone of t, keeping its calendar date as UTC
// midnight so day counts are not skewed by DST transitions.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from from's date to to's date. It works on
// Unix seconds because time.Duration cannot span more than about 292 years.
func DaysBetween(from, to time.Time) int {
	return int((civilDate(to).Unix() - civilDate(from).Unix()) / secondsPerDay)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
