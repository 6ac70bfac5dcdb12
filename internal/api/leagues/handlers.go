// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/api/apiutil"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

const (
	leagueQueryTimeout = 5 * time.Second
	leagueIDPathKey    = "id"
	tierIDPathKey      = "id"
	positionPathKey    = "position"
	weekQueryKey       = "week"
	maxSlugAttempts    = 20
)

var (
	database *appdb.DB
	location = time.Local
	now      = time.Now
)

// InitHandlers binds the handlers to a database and the league timezone used
// to decide which week is current.
func InitHandlers(db *appdb.DB, loc *time.Location) {
	if db == nil {
		return
	}
	database = db
	if loc != nil {
		location = loc
	}
}

func loadDB() *appdb.DB {
	return database
}

func clock() time.Time {
	return now().In(location)
}

type formatResponse struct {
	ID          string              `json:"id"`
	Label       string              `json:"label"`
	TeamCount   int                 `json:"teamCount"`
	Positions   []schedule.Position `json:"positions"`
	GridColumns string              `json:"gridColumns"`
}

// GET /api/v1/formats
func HandleListFormats(w http.ResponseWriter, r *http.Request) {
	formats := schedule.Formats()
	response := make([]formatResponse, 0, len(formats))
	for _, format := range formats {
		response = append(response, formatResponse{
			ID:          format.ID,
			Label:       format.Label,
			TeamCount:   format.TeamCount,
			Positions:   schedule.PositionsForFormat(format.ID),
			GridColumns: schedule.GridColumnsForTeamCount(format.TeamCount),
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"formats":       response,
		"defaultFormat": schedule.DefaultFormatID,
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write formats response")
	}
}

type leagueResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	DayOfWeek    *int   `json:"dayOfWeek,omitempty"`
	DayName      string `json:"dayName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Status       string `json:"status"`
	TotalWeeks   *int   `json:"totalWeeks,omitempty"`
}

func newLeagueResponse(league appdb.League, season schedule.Season) leagueResponse {
	response := leagueResponse{
		ID:           league.ID,
		Name:         league.Name,
		Slug:         league.Slug,
		StartDate:    league.StartDate.String,
		EndDate:      league.EndDate.String,
		ContactEmail: league.ContactEmail,
		Status:       league.Status,
	}
	if season.DayOfWeek != nil {
		day := int(*season.DayOfWeek)
		response.DayOfWeek = &day
		response.DayName = season.DayOfWeek.String()
	}
	if total, ok := schedule.TotalWeeks(season); ok {
		response.TotalWeeks = &total
	}
	return response
}

// GET /api/v1/leagues
func HandleListLeagues(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	leagues, err := db.Queries.ListLeagues(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list leagues")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to list leagues", Err: err})
		return
	}

	response := make([]leagueResponse, 0, len(leagues))
	for _, league := range leagues {
		season, err := league.Season(location)
		if err != nil {
			logger.Warn().Err(err).Int64("league_id", league.ID).Msg("League has unreadable dates")
		}
		response = append(response, newLeagueResponse(league, season))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"leagues": response}); err != nil {
		logger.Error().Err(err).Msg("Failed to write leagues response")
	}
}

type leagueRequest struct {
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	DayOfWeek    *int64 `json:"dayOfWeek"`
	ContactEmail string `json:"contactEmail"`
	Status       string `json:"status"`
}

func (req leagueRequest) params() (appdb.CreateLeagueParams, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return appdb.CreateLeagueParams{}, apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	startDate, err := apiutil.ParseDateField(req.StartDate, "startDate")
	if err != nil {
		return appdb.CreateLeagueParams{}, err
	}
	endDate, err := apiutil.ParseDateField(req.EndDate, "endDate")
	if err != nil {
		return appdb.CreateLeagueParams{}, err
	}
	// Both are normalized YYYY-MM-DD so string order is date order.
	if startDate != "" && endDate != "" && endDate < startDate {
		return appdb.CreateLeagueParams{}, apiutil.FieldError{Field: "endDate", Reason: "must be on or after startDate"}
	}
	if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
		return appdb.CreateLeagueParams{}, apiutil.FieldError{Field: "dayOfWeek", Reason: "must be between 0 (Sunday) and 6 (Saturday)"}
	}

	status := strings.TrimSpace(strings.ToLower(req.Status))
	switch status {
	case "":
		status = appdb.LeagueStatusActive
	case appdb.LeagueStatusDraft, appdb.LeagueStatusActive, appdb.LeagueStatusArchived:
	default:
		return appdb.CreateLeagueParams{}, apiutil.FieldError{Field: "status", Reason: "must be draft, active or archived"}
	}

	leagueSlug := slug.Make(name)
	if leagueSlug == "" {
		leagueSlug = "league"
	}

	return appdb.CreateLeagueParams{
		Name:         name,
		Slug:         leagueSlug,
		StartDate:    apiutil.ToNullString(startDate),
		EndDate:      apiutil.ToNullString(endDate),
		DayOfWeek:    apiutil.ToNullInt64(req.DayOfWeek),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Status:       status,
	}, nil
}

// POST /api/v1/leagues
func HandleCreateLeague(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	params, err := req.params()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := createLeagueWithUniqueSlug(ctx, db.Queries, params)
	if err != nil {
		logger.Error().Err(err).Str("name", params.Name).Msg("Failed to create league")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create league", Err: err})
		return
	}

	season, _ := league.Season(location)
	logger.Info().Int64("league_id", league.ID).Str("slug", league.Slug).Msg("League created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, newLeagueResponse(league, season)); err != nil {
		logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to write league response")
	}
}

// createLeagueWithUniqueSlug appends -2, -3, ... to the slug until the insert
// no longer collides.
func createLeagueWithUniqueSlug(ctx context.Context, q *appdb.Queries, params appdb.CreateLeagueParams) (appdb.League, error) {
	base := params.Slug
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		if attempt > 1 {
			params.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		league, err := q.CreateLeague(ctx, params)
		if err == nil {
			return league, nil
		}
		if !appdb.IsUniqueViolation(err) {
			return appdb.League{}, err
		}
	}
	return appdb.League{}, fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

// loadLeague fetches a league and its season view, translating a missing row
// into a 404.
func loadLeague(ctx context.Context, q *appdb.Queries, leagueID int64) (appdb.League, schedule.Season, error) {
	league, err := q.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.League{}, schedule.Season{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "League not found", Err: err}
		}
		return appdb.League{}, schedule.Season{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to fetch league", Err: err}
	}
	season, err := league.Season(location)
	if err != nil {
		return appdb.League{}, schedule.Season{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "League has invalid dates", Err: err}
	}
	return league, season, nil
}

// resolveWeek reads ?week= or falls back to the week the schedule opens on.
func resolveWeek(r *http.Request, season schedule.Season) (int, error) {
	week, ok, err := apiutil.OptionalQueryInt(r, weekQueryKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return schedule.CalculateCurrentWeekToDisplay(season, clock()), nil
	}
	if err := checkWeekInSeason(week, season, weekQueryKey); err != nil {
		return 0, err
	}
	return week, nil
}

func checkWeekInSeason(week int, season schedule.Season, field string) error {
	if total, ok := schedule.TotalWeeks(season); ok && week > total {
		return apiutil.FieldError{Field: field, Reason: fmt.Sprintf("must be between 1 and %d", total)}
	}
	return nil
}
