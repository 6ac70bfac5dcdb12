package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ottawafunsports/ofsl/internal/schedule"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const leagueColumns = `id, name, slug, start_date, end_date, day_of_week, contact_email, status, created_at, updated_at`

func scanLeague(row rowScanner) (League, error) {
	var l League
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Slug,
		&l.StartDate,
		&l.EndDate,
		&l.DayOfWeek,
		&l.ContactEmail,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

var tierColumns = func() string {
	columns := []string{"id", "league_id", "week_number", "tier_number", "location", "time_slot", "court", "format"}
	for _, label := range schedule.PositionLabels {
		letter := strings.ToLower(string(label))
		columns = append(columns, "team_"+letter+"_name", "team_"+letter+"_ranking")
	}
	return strings.Join(append(columns, "is_completed", "is_playoff", "created_at", "updated_at"), ", ")
}()

func scanTier(row rowScanner) (TierRow, error) {
	var t TierRow
	dest := []interface{}{
		&t.ID,
		&t.LeagueID,
		&t.WeekNumber,
		&t.TierNumber,
		&t.Location,
		&t.TimeSlot,
		&t.Court,
		&t.Format,
	}
	for i := range schedule.PositionLabels {
		dest = append(dest, &t.Names[i], &t.Rankings[i])
	}
	dest = append(dest, &t.IsCompleted, &t.IsPlayoff, &t.CreatedAt, &t.UpdatedAt)
	err := row.Scan(dest...)
	return t, err
}

type CreateLeagueParams struct {
	Name         string
	Slug         string
	StartDate    sql.NullString
	EndDate      sql.NullString
	DayOfWeek    sql.NullInt64
	ContactEmail string
	Status       string
}

func (q *Queries) CreateLeague(ctx context.Context, arg CreateLeagueParams) (League, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO leagues (name, slug, start_date, end_date, day_of_week, contact_email, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Name,
		arg.Slug,
		arg.StartDate,
		arg.EndDate,
		arg.DayOfWeek,
		arg.ContactEmail,
		arg.Status,
	)
	if err != nil {
		return League{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return League{}, err
	}
	return q.GetLeague(ctx, id)
}

func (q *Queries) GetLeague(ctx context.Context, id int64) (League, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = ?`, id)
	return scanLeague(row)
}

func (q *Queries) ListLeagues(ctx context.Context) ([]League, error) {
	return q.listLeagues(ctx, `SELECT `+leagueColumns+` FROM leagues ORDER BY start_date DESC, name`)
}

func (q *Queries) ListActiveLeagues(ctx context.Context) ([]League, error) {
	return q.listLeagues(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE status = ? ORDER BY id`, LeagueStatusActive)
}

func (q *Queries) listLeagues(ctx context.Context, query string, args ...interface{}) ([]League, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []League
	for rows.Next() {
		league, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

type CreateTierParams struct {
	LeagueID   int64
	WeekNumber int64
	TierNumber int64
	Location   string
	TimeSlot   string
	Court      string
	Format     string
	IsPlayoff  bool
}

func (q *Queries) CreateTier(ctx context.Context, arg CreateTierParams) (TierRow, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO weekly_tiers (league_id, week_number, tier_number, location, time_slot, court, format, is_playoff)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.LeagueID,
		arg.WeekNumber,
		arg.TierNumber,
		arg.Location,
		arg.TimeSlot,
		arg.Court,
		arg.Format,
		arg.IsPlayoff,
	)
	if err != nil {
		return TierRow{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return TierRow{}, err
	}
	return q.GetTier(ctx, id)
}

func (q *Queries) GetTier(ctx context.Context, id int64) (TierRow, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+tierColumns+` FROM weekly_tiers WHERE id = ?`, id)
	return scanTier(row)
}

type ListWeekTiersParams struct {
	LeagueID   int64
	WeekNumber int64
}

func (q *Queries) ListWeekTiers(ctx context.Context, arg ListWeekTiersParams) ([]TierRow, error) {
	return q.listTiers(ctx,
		`SELECT `+tierColumns+` FROM weekly_tiers
		 WHERE league_id = ? AND week_number = ?
		 ORDER BY tier_number`,
		arg.LeagueID,
		arg.WeekNumber,
	)
}

func (q *Queries) ListLeagueTiers(ctx context.Context, leagueID int64) ([]TierRow, error) {
	return q.listTiers(ctx,
		`SELECT `+tierColumns+` FROM weekly_tiers
		 WHERE league_id = ?
		 ORDER BY week_number, tier_number`,
		leagueID,
	)
}

func (q *Queries) listTiers(ctx context.Context, query string, args ...interface{}) ([]TierRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []TierRow
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tiers, nil
}

type UpdateTierLineupParams struct {
	ID       int64
	Format   string
	Names    [len(schedule.PositionLabels)]string
	Rankings [len(schedule.PositionLabels)]int64
}

// TierLineupParams flattens a tier's format and positions for UpdateTierLineup.
func TierLineupParams(tier schedule.Tier) UpdateTierLineupParams {
	params := UpdateTierLineupParams{ID: tier.ID, Format: tier.Format}
	for i, label := range schedule.PositionLabels {
		slot := tier.Positions[label]
		if slot.IsEmpty() {
			continue
		}
		params.Names[i] = slot.Name
		params.Rankings[i] = int64(slot.Ranking)
	}
	return params
}

// UpdateTierLineup overwrites the format and every position column of a tier.
func (q *Queries) UpdateTierLineup(ctx context.Context, arg UpdateTierLineupParams) (TierRow, error) {
	assignments := []string{"format = ?"}
	args := []interface{}{arg.Format}
	for i, label := range schedule.PositionLabels {
		letter := strings.ToLower(string(label))
		assignments = append(assignments, fmt.Sprintf("team_%s_name = ?", letter), fmt.Sprintf("team_%s_ranking = ?", letter))
		args = append(args, arg.Names[i], arg.Rankings[i])
	}
	args = append(args, arg.ID)

	result, err := q.db.ExecContext(ctx,
		`UPDATE weekly_tiers SET `+strings.Join(assignments, ", ")+`, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return TierRow{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return TierRow{}, err
	}
	if affected == 0 {
		return TierRow{}, sql.ErrNoRows
	}
	return q.GetTier(ctx, arg.ID)
}

type MarkWeekCompletedParams struct {
	LeagueID   int64
	WeekNumber int64
}

// MarkWeekCompleted flags every open tier of a league week as completed and
// returns how many rows changed.
func (q *Queries) MarkWeekCompleted(ctx context.Context, arg MarkWeekCompletedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE weekly_tiers
		 SET is_completed = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE league_id = ? AND week_number = ? AND is_completed = 0`,
		arg.LeagueID,
		arg.WeekNumber,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListOpenWeekNumbers returns the weeks of a league that still have tiers not
// marked completed.
func (q *Queries) ListOpenWeekNumbers(ctx context.Context, leagueID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT week_number FROM weekly_tiers
		 WHERE league_id = ? AND is_completed = 0
		 ORDER BY week_number`,
		leagueID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []int64
	for rows.Next() {
		var week int64
		if err := rows.Scan(&week); err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return weeks, nil
}
