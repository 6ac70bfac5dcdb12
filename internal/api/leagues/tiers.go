package leagues

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/api/apiutil"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

// editError maps lineup rule violations onto HTTP statuses.
func editError(err error) error {
	var formatErr *schedule.FormatChangeError
	switch {
	case errors.As(err, &formatErr):
		return apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: "Format change would remove teams", Reason: formatErr.Reason, Err: err}
	case errors.Is(err, schedule.ErrUnknownPosition),
		errors.Is(err, schedule.ErrInactivePosition),
		errors.Is(err, schedule.ErrEmptyTeamName),
		errors.Is(err, schedule.ErrPositionEmpty):
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	case errors.Is(err, schedule.ErrPositionOccupied),
		errors.Is(err, schedule.ErrDuplicateTeam),
		errors.Is(err, schedule.ErrTierCompleted):
		return apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	default:
		return err
	}
}

func loadTier(ctx context.Context, q *appdb.Queries, tierID int64) (schedule.Tier, error) {
	row, err := q.GetTier(ctx, tierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.Tier{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Tier not found", Err: err}
		}
		return schedule.Tier{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to fetch tier", Err: err}
	}
	return row.Tier(), nil
}

func saveTier(ctx context.Context, q *appdb.Queries, tier schedule.Tier) (schedule.Tier, error) {
	row, err := q.UpdateTierLineup(ctx, appdb.TierLineupParams(tier))
	if err != nil {
		return schedule.Tier{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to save tier", Err: err}
	}
	return row.Tier(), nil
}

// editTier runs fetch, edit and persist for one tier inside a transaction.
func editTier(w http.ResponseWriter, r *http.Request, tierID int64, action string, edit func(schedule.Tier) (schedule.Tier, error)) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var saved schedule.Tier
	err := db.RunInTx(ctx, func(txdb *appdb.DB) error {
		tier, err := loadTier(ctx, txdb.Queries, tierID)
		if err != nil {
			return err
		}
		updated, err := edit(tier)
		if err != nil {
			return editError(err)
		}
		saved, err = saveTier(ctx, txdb.Queries, updated)
		return err
	})
	if err != nil {
		logger.Warn().Err(err).Int64("tier_id", tierID).Str("action", action).Msg("Tier edit rejected")
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("tier_id", tierID).Str("action", action).Msg("Tier updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, newTierResponse(saved)); err != nil {
		logger.Error().Err(err).Int64("tier_id", tierID).Msg("Failed to write tier response")
	}
}

type formatChangeRequest struct {
	Format string `json:"format"`
}

// PUT /api/v1/tiers/{id}/format
func HandleChangeFormat(w http.ResponseWriter, r *http.Request) {
	tierID, err := apiutil.PathID(r, tierIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req formatChangeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	format := strings.TrimSpace(req.Format)
	if _, ok := schedule.LookupFormat(format); !ok {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "format", Reason: "is not a known game format"})
		return
	}

	editTier(w, r, tierID, "change_format", func(tier schedule.Tier) (schedule.Tier, error) {
		return schedule.ChangeFormat(tier, format)
	})
}

type placeTeamRequest struct {
	Position string `json:"position"`
	Name     string `json:"name"`
	Ranking  int    `json:"ranking"`
}

// POST /api/v1/tiers/{id}/teams
func HandlePlaceTeam(w http.ResponseWriter, r *http.Request) {
	tierID, err := apiutil.PathID(r, tierIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req placeTeamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	position, err := schedule.ParsePosition(req.Position)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "position", Reason: "must be one of A-F"})
		return
	}

	team := schedule.TeamSlot{Name: strings.TrimSpace(req.Name), Ranking: req.Ranking}
	editTier(w, r, tierID, "place_team", func(tier schedule.Tier) (schedule.Tier, error) {
		return schedule.PlaceTeam(tier, position, team)
	})
}

// DELETE /api/v1/tiers/{id}/teams/{position}
func HandleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	tierID, err := apiutil.PathID(r, tierIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	position, err := schedule.ParsePosition(r.PathValue(positionPathKey))
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "position", Reason: "must be one of A-F"})
		return
	}

	editTier(w, r, tierID, "remove_team", func(tier schedule.Tier) (schedule.Tier, error) {
		updated, _, err := schedule.RemoveTeam(tier, position)
		return updated, err
	})
}

type moveTeamRequest struct {
	FromTierID   int64  `json:"fromTierId"`
	FromPosition string `json:"fromPosition"`
	ToTierID     int64  `json:"toTierId"`
	ToPosition   string `json:"toPosition"`
}

// POST /api/v1/tiers/move
func HandleMoveTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}

	var req moveTeamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	if req.FromTierID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "fromTierId", Reason: "must be a positive integer"})
		return
	}
	if req.ToTierID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "toTierId", Reason: "must be a positive integer"})
		return
	}
	fromPosition, err := schedule.ParsePosition(req.FromPosition)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "fromPosition", Reason: "must be one of A-F"})
		return
	}
	toPosition, err := schedule.ParsePosition(req.ToPosition)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "toPosition", Reason: "must be one of A-F"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var updated []schedule.Tier
	err = db.RunInTx(ctx, func(txdb *appdb.DB) error {
		from, err := loadTier(ctx, txdb.Queries, req.FromTierID)
		if err != nil {
			return err
		}
		to := from
		if req.ToTierID != req.FromTierID {
			to, err = loadTier(ctx, txdb.Queries, req.ToTierID)
			if err != nil {
				return err
			}
			if to.LeagueID != from.LeagueID {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Tiers belong to different leagues"}
			}
		}

		from, to, err = schedule.MoveTeam(from, fromPosition, to, toPosition)
		if err != nil {
			return editError(err)
		}

		savedFrom, err := saveTier(ctx, txdb.Queries, from)
		if err != nil {
			return err
		}
		updated = append(updated, savedFrom)
		if to.ID == from.ID {
			return nil
		}
		savedTo, err := saveTier(ctx, txdb.Queries, to)
		if err != nil {
			return err
		}
		updated = append(updated, savedTo)
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).
			Int64("from_tier_id", req.FromTierID).
			Int64("to_tier_id", req.ToTierID).
			Msg("Team move rejected")
		apiutil.WriteError(w, r, err)
		return
	}

	response := make([]tierResponse, 0, len(updated))
	for _, tier := range updated {
		response = append(response, newTierResponse(tier))
	}
	logger.Info().Int64("from_tier_id", req.FromTierID).Int64("to_tier_id", req.ToTierID).Msg("Team moved")
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"tiers": response}); err != nil {
		logger.Error().Err(err).Msg("Failed to write move response")
	}
}
