package leagues

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
	"github.com/ottawafunsports/ofsl/internal/testutil"
)

// Wednesday of week two of a season starting Monday 2025-01-06.
var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func setupHandlers(t *testing.T) (*appdb.DB, *http.ServeMux) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	prevDB, prevLocation, prevNow := database, location, now
	t.Cleanup(func() {
		database, location, now = prevDB, prevLocation, prevNow
	})

	InitHandlers(testDB, time.UTC)
	now = func() time.Time { return fixedNow }

	mux := http.NewServeMux()
	RegisterRoutes(mux)
	return testDB, mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func tuesdayLeague(t *testing.T, testDB *appdb.DB) appdb.League {
	t.Helper()
	return testutil.InsertLeague(t, testDB, testutil.LeagueOptions{
		Name:      "Tuesday Coed",
		Slug:      "tuesday-coed",
		StartDate: "2025-01-06",
		EndDate:   "2025-03-03",
		DayOfWeek: int(time.Tuesday),
	})
}

func TestHandleListFormats(t *testing.T) {
	_, mux := setupHandlers(t)

	recorder := doRequest(t, mux, http.MethodGet, "/api/v1/formats", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}

	var body struct {
		Formats       []formatResponse `json:"formats"`
		DefaultFormat string           `json:"defaultFormat"`
	}
	decodeBody(t, recorder, &body)
	if body.DefaultFormat != schedule.DefaultFormatID {
		t.Fatalf("defaultFormat = %q, want %q", body.DefaultFormat, schedule.DefaultFormatID)
	}
	if len(body.Formats) != len(schedule.Formats()) {
		t.Fatalf("formats = %d, want %d", len(body.Formats), len(schedule.Formats()))
	}
	for _, format := range body.Formats {
		if len(format.Positions) != format.TeamCount {
			t.Fatalf("format %s positions = %v, want %d", format.ID, format.Positions, format.TeamCount)
		}
	}
}

func TestHandleCreateLeague(t *testing.T) {
	_, mux := setupHandlers(t)

	request := map[string]any{
		"name":         "Tuesday Coed Volleyball",
		"startDate":    "2025-01-06",
		"endDate":      "2025-03-03",
		"dayOfWeek":    2,
		"contactEmail": "coord@ofsl.test",
	}
	recorder := doRequest(t, mux, http.MethodPost, "/api/v1/leagues", request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusCreated, recorder.Body.String())
	}
	var created leagueResponse
	decodeBody(t, recorder, &created)
	if created.Slug != "tuesday-coed-volleyball" {
		t.Fatalf("slug = %q, want tuesday-coed-volleyball", created.Slug)
	}
	if created.DayName != "Tuesday" || created.TotalWeeks == nil || *created.TotalWeeks != 9 {
		t.Fatalf("created = %+v", created)
	}

	recorder = doRequest(t, mux, http.MethodPost, "/api/v1/leagues", request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("second create status = %d, want %d", recorder.Code, http.StatusCreated)
	}
	var second leagueResponse
	decodeBody(t, recorder, &second)
	if second.Slug != "tuesday-coed-volleyball-2" {
		t.Fatalf("second slug = %q, want tuesday-coed-volleyball-2", second.Slug)
	}

	recorder = doRequest(t, mux, http.MethodGet, "/api/v1/leagues", nil)
	var listed struct {
		Leagues []leagueResponse `json:"leagues"`
	}
	decodeBody(t, recorder, &listed)
	if len(listed.Leagues) != 2 {
		t.Fatalf("leagues = %d, want 2", len(listed.Leagues))
	}
}

func TestHandleCreateLeagueValidation(t *testing.T) {
	_, mux := setupHandlers(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{name: "missing_name", body: map[string]any{"name": " "}, wantField: "name"},
		{name: "bad_date", body: map[string]any{"name": "A", "startDate": "01/06/2025"}, wantField: "startDate"},
		{name: "end_before_start", body: map[string]any{"name": "A", "startDate": "2025-02-01", "endDate": "2025-01-01"}, wantField: "endDate"},
		{name: "bad_day", body: map[string]any{"name": "A", "dayOfWeek": 7}, wantField: "dayOfWeek"},
		{name: "bad_status", body: map[string]any{"name": "A", "status": "paused"}, wantField: "status"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := doRequest(t, mux, http.MethodPost, "/api/v1/leagues", test.body)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
			}
			var body map[string]string
			decodeBody(t, recorder, &body)
			if body["field"] != test.wantField {
				t.Fatalf("field = %q, want %q", body["field"], test.wantField)
			}
		})
	}
}

func TestHandleScheduleDefaultsToDisplayWeek(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	testutil.InsertTier(t, testDB, appdb.CreateTierParams{
		LeagueID:   league.ID,
		WeekNumber: 3,
		TierNumber: 1,
		Location:   "Glebe CI",
	}, "Net Ninjas", "Block Party", "Dig Deep")

	recorder := doRequest(t, mux, http.MethodGet, "/api/v1/leagues/"+itoa(league.ID)+"/schedule", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusOK, recorder.Body.String())
	}

	var body scheduleResponse
	decodeBody(t, recorder, &body)
	if body.Week != 3 {
		t.Fatalf("week = %d, want 3", body.Week)
	}
	if body.Status != schedule.WeekFuture {
		t.Fatalf("status = %q, want future", body.Status)
	}
	if body.PlayDate != "2025-01-21" {
		t.Fatalf("playDate = %q, want 2025-01-21", body.PlayDate)
	}
	if len(body.Tiers) != 1 {
		t.Fatalf("tiers = %d, want 1", len(body.Tiers))
	}
	tier := body.Tiers[0]
	if tier.FormatLabel != "3 Teams (6 Sets)" || tier.GridColumns != "3 columns" {
		t.Fatalf("tier = %+v", tier)
	}
	if len(tier.Positions) != 3 || tier.Positions[1].Name != "Block Party" {
		t.Fatalf("positions = %+v", tier.Positions)
	}
}

func TestHandleScheduleExplicitWeek(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	base := "/api/v1/leagues/" + itoa(league.ID) + "/schedule"

	recorder := doRequest(t, mux, http.MethodGet, base+"?week=2", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var body scheduleResponse
	decodeBody(t, recorder, &body)
	if body.Week != 2 || body.Status != schedule.WeekPast {
		t.Fatalf("week %d status %q, want week 2 past", body.Week, body.Status)
	}

	for _, query := range []string{"?week=10", "?week=0", "?week=abc"} {
		recorder = doRequest(t, mux, http.MethodGet, base+query, nil)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want %d", query, recorder.Code, http.StatusBadRequest)
		}
	}

	recorder = doRequest(t, mux, http.MethodGet, "/api/v1/leagues/9999/schedule", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing league status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}

func TestHandleCreateTier(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	path := "/api/v1/leagues/" + itoa(league.ID) + "/tiers"

	request := map[string]any{"weekNumber": 1, "tierNumber": 1, "location": "Glebe CI", "format": "4-teams-head-to-head"}
	recorder := doRequest(t, mux, http.MethodPost, path, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusCreated, recorder.Body.String())
	}
	var created tierResponse
	decodeBody(t, recorder, &created)
	if created.TeamCount != 4 || len(created.Positions) != 4 {
		t.Fatalf("created = %+v", created)
	}

	recorder = doRequest(t, mux, http.MethodPost, path, request)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want %d", recorder.Code, http.StatusConflict)
	}

	recorder = doRequest(t, mux, http.MethodPost, path, map[string]any{"weekNumber": 1, "tierNumber": 2, "format": "7-teams"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown format status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandleChangeFormat(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	full := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 1, TierNumber: 1}, "Net Ninjas", "Block Party", "Dig Deep")
	pair := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 1, TierNumber: 2}, "Spikers", "Aces")

	recorder := doRequest(t, mux, http.MethodPut, "/api/v1/tiers/"+itoa(full.ID)+"/format", map[string]string{"format": "2-teams-best-of-5"})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnprocessableEntity)
	}
	var rejected map[string]string
	decodeBody(t, recorder, &rejected)
	if !strings.Contains(rejected["reason"], "Current tier has 3 teams") || !strings.Contains(rejected["reason"], "Remove teams first") {
		t.Fatalf("reason = %q", rejected["reason"])
	}

	recorder = doRequest(t, mux, http.MethodPut, "/api/v1/tiers/"+itoa(pair.ID)+"/format", map[string]string{"format": "2-teams-best-of-5"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusOK, recorder.Body.String())
	}
	stored, err := testDB.Queries.GetTier(context.Background(), pair.ID)
	if err != nil {
		t.Fatalf("GetTier() error = %v", err)
	}
	if stored.Format != "2-teams-best-of-5" || stored.Names[0] != "Spikers" || stored.Names[1] != "Aces" {
		t.Fatalf("stored = %+v", stored)
	}

	recorder = doRequest(t, mux, http.MethodPut, "/api/v1/tiers/"+itoa(pair.ID)+"/format", map[string]string{"format": "nope"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown format status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}

	recorder = doRequest(t, mux, http.MethodPut, "/api/v1/tiers/9999/format", map[string]string{"format": schedule.DefaultFormatID})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing tier status = %d, want %d", recorder.Code, http.StatusNotFound)
	}

	if _, err := testDB.Queries.MarkWeekCompleted(context.Background(), appdb.MarkWeekCompletedParams{LeagueID: league.ID, WeekNumber: 1}); err != nil {
		t.Fatalf("MarkWeekCompleted() error = %v", err)
	}
	recorder = doRequest(t, mux, http.MethodPut, "/api/v1/tiers/"+itoa(pair.ID)+"/format", map[string]string{"format": schedule.DefaultFormatID})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("completed tier status = %d, want %d", recorder.Code, http.StatusConflict)
	}
}

func TestHandlePlaceAndRemoveTeam(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	row := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 1, TierNumber: 1}, "Net Ninjas", "Block Party")
	teamsPath := "/api/v1/tiers/" + itoa(row.ID) + "/teams"

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{name: "place", body: map[string]any{"position": "c", "name": "Dig Deep", "ranking": 7}, wantStatus: http.StatusOK},
		{name: "occupied", body: map[string]any{"position": "A", "name": "Aces"}, wantStatus: http.StatusConflict},
		{name: "inactive", body: map[string]any{"position": "D", "name": "Aces"}, wantStatus: http.StatusBadRequest},
		{name: "unknown_position", body: map[string]any{"position": "Z", "name": "Aces"}, wantStatus: http.StatusBadRequest},
		{name: "empty_name", body: map[string]any{"position": "C", "name": "  "}, wantStatus: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := doRequest(t, mux, http.MethodPost, teamsPath, test.body)
			if recorder.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", recorder.Code, test.wantStatus, recorder.Body.String())
			}
		})
	}

	stored, err := testDB.Queries.GetTier(context.Background(), row.ID)
	if err != nil {
		t.Fatalf("GetTier() error = %v", err)
	}
	if stored.Names[2] != "Dig Deep" || stored.Rankings[2] != 7 {
		t.Fatalf("position C = %q/%d, want Dig Deep/7", stored.Names[2], stored.Rankings[2])
	}

	recorder := doRequest(t, mux, http.MethodDelete, teamsPath+"/B", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("remove status = %d, want %d", recorder.Code, http.StatusOK)
	}
	recorder = doRequest(t, mux, http.MethodDelete, teamsPath+"/B", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("remove empty status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandleMoveTeam(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	upper := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 1, TierNumber: 1}, "Net Ninjas", "Block Party", "Dig Deep")
	lower := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 1, TierNumber: 2}, "Spikers", "Aces")

	recorder := doRequest(t, mux, http.MethodPost, "/api/v1/tiers/move", map[string]any{
		"fromTierId":   lower.ID,
		"fromPosition": "A",
		"toTierId":     upper.ID,
		"toPosition":   "C",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusOK, recorder.Body.String())
	}

	ctx := context.Background()
	storedUpper, _ := testDB.Queries.GetTier(ctx, upper.ID)
	storedLower, _ := testDB.Queries.GetTier(ctx, lower.ID)
	if storedUpper.Names[2] != "Spikers" || storedLower.Names[0] != "Dig Deep" {
		t.Fatalf("after swap upper C = %q, lower A = %q", storedUpper.Names[2], storedLower.Names[0])
	}

	recorder = doRequest(t, mux, http.MethodPost, "/api/v1/tiers/move", map[string]any{
		"fromTierId":   upper.ID,
		"fromPosition": "A",
		"toTierId":     upper.ID,
		"toPosition":   "B",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("same tier status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var moved struct {
		Tiers []tierResponse `json:"tiers"`
	}
	decodeBody(t, recorder, &moved)
	if len(moved.Tiers) != 1 || moved.Tiers[0].Positions[0].Name != "Block Party" {
		t.Fatalf("same tier move = %+v", moved.Tiers)
	}

	other := testutil.InsertLeague(t, testDB, testutil.LeagueOptions{Slug: "other", DayOfWeek: -1})
	foreign := testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: other.ID, WeekNumber: 1, TierNumber: 1})
	recorder = doRequest(t, mux, http.MethodPost, "/api/v1/tiers/move", map[string]any{
		"fromTierId":   upper.ID,
		"fromPosition": "A",
		"toTierId":     foreign.ID,
		"toPosition":   "A",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("cross league status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandlePlanSeason(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	path := "/api/v1/leagues/" + itoa(league.ID) + "/season"

	request := map[string]any{
		"slots": []map[string]string{
			{"location": "Glebe CI", "timeSlot": "19:00", "court": "1"},
			{"location": "Glebe CI", "timeSlot": "20:30", "court": "1", "format": "2-teams-best-of-3"},
		},
		"teams": []map[string]any{
			{"name": "Net Ninjas", "ranking": 2},
			{"name": "Block Party", "ranking": 1},
			{"name": "Dig Deep", "ranking": 3},
			{"name": "Spikers", "ranking": 4},
		},
	}
	recorder := doRequest(t, mux, http.MethodPost, path, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusCreated, recorder.Body.String())
	}

	tiers, err := testDB.Queries.ListLeagueTiers(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("ListLeagueTiers() error = %v", err)
	}
	if len(tiers) != 18 {
		t.Fatalf("tiers = %d, want 18", len(tiers))
	}
	if tiers[0].Names[0] != "Block Party" || tiers[1].Names[0] != "Spikers" || tiers[1].TimeSlot != "8:30 PM" {
		t.Fatalf("week one = %+v / %+v", tiers[0], tiers[1])
	}

	recorder = doRequest(t, mux, http.MethodPost, path, request)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("second plan status = %d, want %d", recorder.Code, http.StatusConflict)
	}

	undated := testutil.InsertLeague(t, testDB, testutil.LeagueOptions{Slug: "undated", DayOfWeek: -1})
	recorder = doRequest(t, mux, http.MethodPost, "/api/v1/leagues/"+itoa(undated.ID)+"/season", request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("undated status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandleSearchTeams(t *testing.T) {
	testDB, mux := setupHandlers(t)
	league := tuesdayLeague(t, testDB)
	testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 3, TierNumber: 1}, "Net Ninjas", "Block Party")
	testutil.InsertTier(t, testDB, appdb.CreateTierParams{LeagueID: league.ID, WeekNumber: 3, TierNumber: 2}, "Spikers")
	path := "/api/v1/leagues/" + itoa(league.ID) + "/teams/search"

	recorder := doRequest(t, mux, http.MethodGet, path+"?q=NINJA", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", recorder.Code, http.StatusOK, recorder.Body.String())
	}
	var body struct {
		Week    int         `json:"week"`
		Matches []teamMatch `json:"matches"`
	}
	decodeBody(t, recorder, &body)
	if body.Week != 3 || len(body.Matches) != 1 || body.Matches[0].Name != "Net Ninjas" {
		t.Fatalf("search = %+v", body)
	}

	recorder = doRequest(t, mux, http.MethodGet, path, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing q status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestSearchTeamsRanksSubsequenceBeforeTypos(t *testing.T) {
	tiers := []schedule.Tier{
		{ID: 1, TierNumber: 1, Format: schedule.DefaultFormatID, Positions: schedule.Lineup{
			schedule.PositionA: {Name: "Block Party", Ranking: 1},
			schedule.PositionB: {Name: "Blocked Shots", Ranking: 2},
		}},
		{ID: 2, TierNumber: 2, Format: schedule.DefaultFormatID, Positions: schedule.Lineup{
			schedule.PositionA: {Name: "Bloxk Party", Ranking: 3},
			schedule.PositionC: {Name: "Spikers", Ranking: 4},
		}},
	}

	matches := searchTeams("block party", tiers)
	if len(matches) != 2 {
		t.Fatalf("searchTeams() = %+v, want 2 matches", matches)
	}
	if matches[0].Name != "Block Party" || matches[0].Distance != 0 {
		t.Fatalf("first match = %+v, want exact Block Party", matches[0])
	}
	if matches[1].Name != "Bloxk Party" || matches[1].TierID != 2 || matches[1].Position != schedule.PositionA {
		t.Fatalf("second match = %+v, want typo Bloxk Party", matches[1])
	}

	if got := searchTeams("   ", tiers); got != nil {
		t.Fatalf("searchTeams(blank) = %+v, want nil", got)
	}
}

func TestSimilarityCountsRunes(t *testing.T) {
	tests := []struct {
		query, name string
		distance    int
		want        float64
	}{
		{"éclairs", "éclairs", 0, 1},
		{"éclairs", "eclairs", 1, 1 - 1.0/7},
		{"ééé", "éàà", 2, 1 - 2.0/3},
		{"", "", 0, 0},
	}
	for _, tt := range tests {
		if got := similarity(tt.query, tt.name, tt.distance); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("similarity(%q, %q, %d) = %v, want %v", tt.query, tt.name, tt.distance, got, tt.want)
		}
	}
}

func TestSearchTeamsAccentedTypoThreshold(t *testing.T) {
	tiers := []schedule.Tier{
		{ID: 1, TierNumber: 1, Format: schedule.DefaultFormatID, Positions: schedule.Lineup{
			schedule.PositionA: {Name: "Les Éclairs", Ranking: 1},
			schedule.PositionB: {Name: "Éàà", Ranking: 2},
		}},
	}

	matches := searchTeams("les éclairz", tiers)
	if len(matches) != 1 || matches[0].Name != "Les Éclairs" {
		t.Fatalf("searchTeams(typo) = %+v, want Les Éclairs", matches)
	}
	// Two of three letters differ: similar by bytes, not by letters.
	if got := searchTeams("ééé", tiers); len(got) != 0 {
		t.Fatalf("searchTeams(ééé) = %+v, want no matches", got)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
