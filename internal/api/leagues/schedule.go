package leagues

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/api/apiutil"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	leagueplanner "github.com/ottawafunsports/ofsl/internal/leagues"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

type positionResponse struct {
	Position schedule.Position `json:"position"`
	Name     string            `json:"name,omitempty"`
	Ranking  int               `json:"ranking,omitempty"`
	Empty    bool              `json:"empty"`
}

type tierResponse struct {
	ID          int64               `json:"id"`
	WeekNumber  int                 `json:"weekNumber"`
	TierNumber  int                 `json:"tierNumber"`
	Location    string              `json:"location"`
	TimeSlot    string              `json:"timeSlot"`
	Court       string              `json:"court"`
	Format      string              `json:"format"`
	FormatLabel string              `json:"formatLabel"`
	TeamCount   int                 `json:"teamCount"`
	GridColumns string              `json:"gridColumns"`
	Positions   []positionResponse  `json:"positions"`
	// Teams seated outside the format's positions, e.g. from imported data.
	Overflow    []schedule.Occupant `json:"overflow,omitempty"`
	IsCompleted bool                `json:"isCompleted"`
	IsPlayoff   bool                `json:"isPlayoff"`
}

func newTierResponse(tier schedule.Tier) tierResponse {
	response := tierResponse{
		ID:          tier.ID,
		WeekNumber:  tier.WeekNumber,
		TierNumber:  tier.TierNumber,
		Location:    tier.Location,
		TimeSlot:    tier.TimeSlot,
		Court:       tier.Court,
		Format:      tier.Format,
		FormatLabel: schedule.FormatLabel(tier.Format),
		TeamCount:   schedule.TeamCountForFormat(tier.Format),
		GridColumns: tier.GridColumns(),
		IsCompleted: tier.IsCompleted,
		IsPlayoff:   tier.IsPlayoff,
	}
	for _, position := range tier.ActivePositions() {
		slot := tier.Positions[position]
		response.Positions = append(response.Positions, positionResponse{
			Position: position,
			Name:     slot.Name,
			Ranking:  slot.Ranking,
			Empty:    slot.IsEmpty(),
		})
	}
	for _, occupant := range tier.Positions.Occupied() {
		if !tier.IsActive(occupant.Position) {
			response.Overflow = append(response.Overflow, occupant)
		}
	}
	return response
}

type scheduleResponse struct {
	League     leagueResponse      `json:"league"`
	Week       int                 `json:"week"`
	TotalWeeks *int                `json:"totalWeeks,omitempty"`
	Status     schedule.WeekStatus `json:"status"`
	PlayDate   string              `json:"playDate,omitempty"`
	Tiers      []tierResponse      `json:"tiers"`
}

// GET /api/v1/leagues/{id}/schedule
func HandleSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, season, err := loadLeague(ctx, db.Queries, leagueID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	week, err := resolveWeek(r, season)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	rows, err := db.Queries.ListWeekTiers(ctx, appdb.ListWeekTiersParams{LeagueID: leagueID, WeekNumber: int64(week)})
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Int("week", week).Msg("Failed to load week tiers")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load schedule", Err: err})
		return
	}

	leagueView := newLeagueResponse(league, season)
	response := scheduleResponse{
		League:     leagueView,
		Week:       week,
		TotalWeeks: leagueView.TotalWeeks,
		Status:     schedule.GetWeekStatus(week, season, clock()),
		Tiers:      make([]tierResponse, 0, len(rows)),
	}
	if playDate, ok := schedule.PlayDate(season, week); ok {
		response.PlayDate = playDate.Format(appdb.DateLayout)
	}
	for _, row := range rows {
		response.Tiers = append(response.Tiers, newTierResponse(row.Tier()))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write schedule response")
	}
}

type tierRequest struct {
	WeekNumber int    `json:"weekNumber"`
	TierNumber int    `json:"tierNumber"`
	Location   string `json:"location"`
	TimeSlot   string `json:"timeSlot"`
	Court      string `json:"court"`
	Format     string `json:"format"`
	IsPlayoff  bool   `json:"isPlayoff"`
}

// POST /api/v1/leagues/{id}/tiers
func HandleCreateTier(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req tierRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	if req.WeekNumber < 1 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "weekNumber", Reason: "must be greater than 0"})
		return
	}
	if req.TierNumber < 1 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "tierNumber", Reason: "must be greater than 0"})
		return
	}
	format := strings.TrimSpace(req.Format)
	if format == "" {
		format = schedule.DefaultFormatID
	}
	if _, ok := schedule.LookupFormat(format); !ok {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "format", Reason: "is not a known game format"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	_, season, err := loadLeague(ctx, db.Queries, leagueID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := checkWeekInSeason(req.WeekNumber, season, "weekNumber"); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	row, err := db.Queries.CreateTier(ctx, appdb.CreateTierParams{
		LeagueID:   leagueID,
		WeekNumber: int64(req.WeekNumber),
		TierNumber: int64(req.TierNumber),
		Location:   strings.TrimSpace(req.Location),
		TimeSlot:   strings.TrimSpace(req.TimeSlot),
		Court:      strings.TrimSpace(req.Court),
		Format:     format,
		IsPlayoff:  req.IsPlayoff,
	})
	if err != nil {
		if appdb.IsUniqueViolation(err) {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusConflict, Message: "Tier number already exists for this week", Err: err})
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to create tier")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create tier", Err: err})
		return
	}

	logger.Info().Int64("league_id", leagueID).Int64("tier_id", row.ID).Int("week", req.WeekNumber).Msg("Tier created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, newTierResponse(row.Tier())); err != nil {
		logger.Error().Err(err).Int64("tier_id", row.ID).Msg("Failed to write tier response")
	}
}

type seasonRequest struct {
	Slots []leagueplanner.TierSlot `json:"slots"`
	Teams []schedule.TeamSlot      `json:"teams"`
}

// POST /api/v1/leagues/{id}/season
func HandlePlanSeason(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req seasonRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	_, season, err := loadLeague(ctx, db.Queries, leagueID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	plan, err := leagueplanner.PlanSeason(season, req.Slots, req.Teams)
	if err != nil {
		logger.Warn().Err(err).Int64("league_id", leagueID).Msg("Season plan rejected")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err})
		return
	}

	err = db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		existing, err := qtx.ListLeagueTiers(ctx, leagueID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check existing schedule", Err: err}
		}
		if len(existing) > 0 {
			return apiutil.HandlerError{Status: http.StatusConflict, Message: "Schedule already exists for this league"}
		}

		for _, planned := range plan {
			row, err := qtx.CreateTier(ctx, appdb.CreateTierParams{
				LeagueID:   leagueID,
				WeekNumber: int64(planned.WeekNumber),
				TierNumber: int64(planned.TierNumber),
				Location:   planned.Location,
				TimeSlot:   planned.TimeSlot,
				Court:      planned.Court,
				Format:     planned.Format,
			})
			if err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create tier", Err: err}
			}
			if len(planned.Positions.Occupied()) == 0 {
				continue
			}
			tier := row.Tier()
			tier.Positions = planned.Positions
			if _, err := qtx.UpdateTierLineup(ctx, appdb.TierLineupParams(tier)); err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to seed tier", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		var herr apiutil.HandlerError
		if errors.As(err, &herr) && herr.Status >= http.StatusInternalServerError {
			logger.Error().Err(herr.Err).Int64("league_id", leagueID).Msg(herr.Message)
		}
		apiutil.WriteError(w, r, err)
		return
	}

	weeks, _ := schedule.TotalWeeks(season)
	logger.Info().Int64("league_id", leagueID).Int("tiers", len(plan)).Int("weeks", weeks).Msg("Season planned")
	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"weeks":        weeks,
		"tiersPerWeek": len(req.Slots),
		"tiers":        len(plan),
	}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write season response")
	}
}
