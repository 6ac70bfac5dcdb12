package leagues

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/api/apiutil"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/email"
	"github.com/ottawafunsports/ofsl/internal/ratelimit"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

var (
	digestSender  email.EmailSender
	digestBaseURL string
	digestLimiter *ratelimit.Limiter
)

// InitDigest enables on-demand digests. A nil sender leaves them disabled and
// a nil limiter leaves them unthrottled.
func InitDigest(sender email.EmailSender, baseURL string, limiter *ratelimit.Limiter) {
	digestSender = sender
	digestBaseURL = baseURL
	digestLimiter = limiter
}

// POST /api/v1/leagues/{id}/digest
func HandleSendDigest(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	db := loadDB()
	if db == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, errors.New("database not initialized"))
		return
	}
	if digestSender == nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Email is not configured"})
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
	recipient := strings.TrimSpace(league.ContactEmail)
	if recipient == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "League has no contact email"})
		return
	}
	week, err := resolveWeek(r, season)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	rows, err := db.Queries.ListWeekTiers(ctx, appdb.ListWeekTiersParams{LeagueID: leagueID, WeekNumber: int64(week)})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load schedule", Err: err})
		return
	}
	ip := digestLimiter.ClientIP(r)
	if result := digestLimiter.TryDigestSend(leagueID, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(r.Context(), "weekly_digest", ip, result.Reason)
		w.Header().Set("Retry-After", result.RetryAfterSeconds())
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: "Digest was sent recently", Reason: result.Reason})
		return
	}

	tiers := make([]schedule.Tier, 0, len(rows))
	for _, row := range rows {
		tiers = append(tiers, row.Tier())
	}

	details := email.DigestDetails{
		LeagueName: league.Name,
		WeekNumber: week,
		BaseURL:    digestBaseURL,
		LeagueID:   league.ID,
		Tiers:      tiers,
	}
	details.TotalWeeks, _ = schedule.TotalWeeks(season)
	details.PlayDate, _ = schedule.PlayDate(season, week)
	message := email.BuildWeeklyDigest(details)

	email.SendWeeklyDigestAsync(r.Context(), digestSender, recipient, message, logger)

	logger.Info().Int64("league_id", leagueID).Int("week", week).Msg("Weekly digest queued")
	if err := apiutil.WriteJSON(w, http.StatusAccepted, map[string]any{
		"week":      week,
		"recipient": recipient,
		"subject":   message.Subject,
	}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write digest response")
	}
}
