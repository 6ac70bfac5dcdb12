package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ottawafunsports/ofsl/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// LeagueOptions describes a league to seed. Empty dates and a negative
// DayOfWeek are stored as NULL.
type LeagueOptions struct {
	Name         string
	Slug         string
	StartDate    string
	EndDate      string
	DayOfWeek    int
	ContactEmail string
	Status       string
}

// InsertLeague seeds a league and fails the test on error.
func InsertLeague(t *testing.T, database *db.DB, opts LeagueOptions) db.League {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Tuesday Volleyball"
	}
	if opts.Slug == "" {
		opts.Slug = "league-" + filepath.Base(t.Name())
	}
	if opts.Status == "" {
		opts.Status = db.LeagueStatusActive
	}
	league, err := database.Queries.CreateLeague(context.Background(), db.CreateLeagueParams{
		Name:         opts.Name,
		Slug:         opts.Slug,
		StartDate:    sql.NullString{String: opts.StartDate, Valid: opts.StartDate != ""},
		EndDate:      sql.NullString{String: opts.EndDate, Valid: opts.EndDate != ""},
		DayOfWeek:    sql.NullInt64{Int64: int64(opts.DayOfWeek), Valid: opts.DayOfWeek >= 0},
		ContactEmail: opts.ContactEmail,
		Status:       opts.Status,
	})
	if err != nil {
		t.Fatalf("insert league: %v", err)
	}
	return league
}

// InsertTier seeds a tier and optionally fills its positions in order A, B, ...
func InsertTier(t *testing.T, database *db.DB, params db.CreateTierParams, teams ...string) db.TierRow {
	t.Helper()

	ctx := context.Background()
	if params.Format == "" {
		params.Format = "3-teams-6-sets"
	}
	row, err := database.Queries.CreateTier(ctx, params)
	if err != nil {
		t.Fatalf("insert tier: %v", err)
	}
	if len(teams) == 0 {
		return row
	}

	update := db.UpdateTierLineupParams{ID: row.ID, Format: row.Format}
	for i, name := range teams {
		update.Names[i] = name
		update.Rankings[i] = int64(i + 1)
	}
	row, err = database.Queries.UpdateTierLineup(ctx, update)
	if err != nil {
		t.Fatalf("fill tier: %v", err)
	}
	return row
}
