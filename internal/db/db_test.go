package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
	"github.com/ottawafunsports/ofsl/internal/testutil"
)

func TestNewEnablesForeignKeys(t *testing.T) {
	database := testutil.NewTestDB(t)

	var enabled int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}

	_, err := database.Queries.CreateTier(context.Background(), db.CreateTierParams{
		LeagueID:   999,
		WeekNumber: 1,
		TierNumber: 1,
		Format:     schedule.DefaultFormatID,
	})
	if err == nil {
		t.Fatalf("CreateTier() with unknown league error = nil, want foreign key failure")
	}
}

func TestNewSetsBusyTimeout(t *testing.T) {
	database := testutil.NewTestDB(t)

	var timeout int
	if err := database.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	database := testutil.NewTestDB(t)

	for _, table := range []string{"leagues", "weekly_tiers", "schema_migrations"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestLeagueRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.InsertLeague(t, database, testutil.LeagueOptions{
		Name:         "Thursday Indoor",
		Slug:         "thursday-indoor",
		StartDate:    "2025-01-06",
		EndDate:      "2025-03-03",
		DayOfWeek:    int(time.Thursday),
		ContactEmail: "coord@ofsl.test",
	})

	got, err := database.Queries.GetLeague(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetLeague() error = %v", err)
	}
	if got.Name != "Thursday Indoor" || got.Slug != "thursday-indoor" || got.Status != db.LeagueStatusActive {
		t.Fatalf("GetLeague() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt is zero")
	}

	season, err := got.Season(time.UTC)
	if err != nil {
		t.Fatalf("Season() error = %v", err)
	}
	if season.StartDate == nil || !season.StartDate.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Season().StartDate = %v", season.StartDate)
	}
	if season.DayOfWeek == nil || *season.DayOfWeek != time.Thursday {
		t.Fatalf("Season().DayOfWeek = %v, want Thursday", season.DayOfWeek)
	}
	if got, _ := schedule.TotalWeeks(season); got != 9 {
		t.Fatalf("TotalWeeks() = %d, want 9", got)
	}

	_, err = database.Queries.CreateLeague(ctx, db.CreateLeagueParams{
		Name:   "Copy",
		Slug:   "thursday-indoor",
		Status: db.LeagueStatusActive,
	})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("CreateLeague() duplicate slug error = %v, want unique violation", err)
	}
}

func TestLeagueSeasonHandlesMissingDates(t *testing.T) {
	database := testutil.NewTestDB(t)
	league := testutil.InsertLeague(t, database, testutil.LeagueOptions{DayOfWeek: -1})

	season, err := league.Season(time.UTC)
	if err != nil {
		t.Fatalf("Season() error = %v", err)
	}
	if season.StartDate != nil || season.EndDate != nil || season.DayOfWeek != nil {
		t.Fatalf("Season() = %+v, want all nil", season)
	}
}

func TestLeagueSeasonRejectsBadDate(t *testing.T) {
	league := db.League{ID: 4, StartDate: sql.NullString{String: "01/06/2025", Valid: true}}
	if _, err := league.Season(time.UTC); err == nil {
		t.Fatalf("Season() error = nil, want parse error")
	}
}

func TestListActiveLeagues(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.InsertLeague(t, database, testutil.LeagueOptions{Slug: "open", DayOfWeek: -1})
	testutil.InsertLeague(t, database, testutil.LeagueOptions{Slug: "old", Status: db.LeagueStatusArchived, DayOfWeek: -1})

	active, err := database.Queries.ListActiveLeagues(context.Background())
	if err != nil {
		t.Fatalf("ListActiveLeagues() error = %v", err)
	}
	if len(active) != 1 || active[0].Slug != "open" {
		t.Fatalf("ListActiveLeagues() = %+v, want only open", active)
	}

	all, err := database.Queries.ListLeagues(context.Background())
	if err != nil {
		t.Fatalf("ListLeagues() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListLeagues() returned %d leagues, want 2", len(all))
	}
}

func TestTierLineupRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	league := testutil.InsertLeague(t, database, testutil.LeagueOptions{DayOfWeek: -1})

	row := testutil.InsertTier(t, database, db.CreateTierParams{
		LeagueID:   league.ID,
		WeekNumber: 1,
		TierNumber: 1,
		Location:   "Glebe CI",
		TimeSlot:   "7:00 PM",
	}, "Spikers", "Dig Deep")

	tier := row.Tier()
	if tier.Format != schedule.DefaultFormatID {
		t.Fatalf("Tier().Format = %q, want default", tier.Format)
	}
	if slot := tier.Positions[schedule.PositionB]; slot.Name != "Dig Deep" || slot.Ranking != 2 {
		t.Fatalf("Tier().Positions[B] = %+v", slot)
	}
	if occupied := tier.Positions.Occupied(); len(occupied) != 2 {
		t.Fatalf("Occupied() = %+v, want 2 teams", occupied)
	}

	changed, err := schedule.ChangeFormat(tier, "2-teams-best-of-5")
	if err != nil {
		t.Fatalf("ChangeFormat() error = %v", err)
	}
	updated, err := database.Queries.UpdateTierLineup(ctx, db.TierLineupParams(changed))
	if err != nil {
		t.Fatalf("UpdateTierLineup() error = %v", err)
	}
	if updated.Format != "2-teams-best-of-5" {
		t.Fatalf("UpdateTierLineup().Format = %q", updated.Format)
	}
	if updated.Names[0] != "Spikers" || updated.Names[1] != "Dig Deep" || updated.Names[2] != "" {
		t.Fatalf("UpdateTierLineup().Names = %v", updated.Names)
	}

	_, err = database.Queries.UpdateTierLineup(ctx, db.UpdateTierLineupParams{ID: 12345, Format: schedule.DefaultFormatID})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("UpdateTierLineup() missing tier error = %v, want sql.ErrNoRows", err)
	}
}

func TestMarkWeekCompleted(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	league := testutil.InsertLeague(t, database, testutil.LeagueOptions{DayOfWeek: -1})

	for week := int64(1); week <= 2; week++ {
		for tierNumber := int64(1); tierNumber <= 2; tierNumber++ {
			testutil.InsertTier(t, database, db.CreateTierParams{LeagueID: league.ID, WeekNumber: week, TierNumber: tierNumber})
		}
	}

	open, err := database.Queries.ListOpenWeekNumbers(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListOpenWeekNumbers() error = %v", err)
	}
	if len(open) != 2 || open[0] != 1 || open[1] != 2 {
		t.Fatalf("ListOpenWeekNumbers() = %v, want [1 2]", open)
	}

	changed, err := database.Queries.MarkWeekCompleted(ctx, db.MarkWeekCompletedParams{LeagueID: league.ID, WeekNumber: 1})
	if err != nil {
		t.Fatalf("MarkWeekCompleted() error = %v", err)
	}
	if changed != 2 {
		t.Fatalf("MarkWeekCompleted() = %d, want 2", changed)
	}

	changed, err = database.Queries.MarkWeekCompleted(ctx, db.MarkWeekCompletedParams{LeagueID: league.ID, WeekNumber: 1})
	if err != nil {
		t.Fatalf("MarkWeekCompleted() second call error = %v", err)
	}
	if changed != 0 {
		t.Fatalf("MarkWeekCompleted() second call = %d, want 0", changed)
	}

	tiers, err := database.Queries.ListWeekTiers(ctx, db.ListWeekTiersParams{LeagueID: league.ID, WeekNumber: 1})
	if err != nil {
		t.Fatalf("ListWeekTiers() error = %v", err)
	}
	for _, tier := range tiers {
		if !tier.IsCompleted {
			t.Fatalf("tier %d not completed", tier.ID)
		}
	}

	open, err = database.Queries.ListOpenWeekNumbers(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListOpenWeekNumbers() error = %v", err)
	}
	if len(open) != 1 || open[0] != 2 {
		t.Fatalf("ListOpenWeekNumbers() = %v, want [2]", open)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	league := testutil.InsertLeague(t, database, testutil.LeagueOptions{DayOfWeek: -1})

	wantErr := errors.New("abort")
	err := database.RunInTx(ctx, func(tx *db.DB) error {
		if _, err := tx.Queries.CreateTier(ctx, db.CreateTierParams{
			LeagueID:   league.ID,
			WeekNumber: 1,
			TierNumber: 1,
			Format:     schedule.DefaultFormatID,
		}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTx() error = %v, want %v", err, wantErr)
	}

	tiers, err := database.Queries.ListLeagueTiers(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListLeagueTiers() error = %v", err)
	}
	if len(tiers) != 0 {
		t.Fatalf("ListLeagueTiers() = %d tiers, want 0 after rollback", len(tiers))
	}
}
