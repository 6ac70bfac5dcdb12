package leagues

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/api/apiutil"
	appdb "github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/schedule"
)

const searchQueryKey = "q"

const (
	// Names this similar to the query count as a match even when the query
	// is not a subsequence of them, so small typos still find the team.
	typoSimilarityThreshold = 0.6
	maxSearchResults        = 20
)

type teamMatch struct {
	Name        string            `json:"name"`
	Ranking     int               `json:"ranking"`
	TierID      int64             `json:"tierId"`
	TierNumber  int               `json:"tierNumber"`
	Position    schedule.Position `json:"position"`
	Distance    int               `json:"distance"`
	subsequence bool
}

// searchTeams ranks the seated teams of tiers against query. Names containing
// the query as a case-insensitive subsequence rank first, then close
// misspellings; ties break on edit distance and name.
func searchTeams(query string, tiers []schedule.Tier) []teamMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []teamMatch
	for _, tier := range tiers {
		for _, occupant := range tier.Positions.Occupied() {
			name := strings.ToLower(strings.TrimSpace(occupant.Team.Name))
			distance := fuzzy.LevenshteinDistance(query, name)
			subsequence := fuzzy.MatchFold(query, name)
			if !subsequence && similarity(query, name, distance) < typoSimilarityThreshold {
				continue
			}
			matches = append(matches, teamMatch{
				Name:        occupant.Team.Name,
				Ranking:     occupant.Team.Ranking,
				TierID:      tier.ID,
				TierNumber:  tier.TierNumber,
				Position:    occupant.Position,
				Distance:    distance,
				subsequence: subsequence,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].subsequence != matches[j].subsequence {
			return matches[i].subsequence
		}
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return strings.ToLower(matches[i].Name) < strings.ToLower(matches[j].Name)
	})
	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}
	return matches
}

// similarity scales a rune edit distance by the longer name's rune count.
func similarity(query, name string, distance int) float64 {
	longest := max(utf8.RuneCountInString(query), utf8.RuneCountInString(name))
	if longest == 0 {
		return 0
	}
	return 1 - float64(distance)/float64(longest)
}

// GET /api/v1/leagues/{id}/teams/search
func HandleSearchTeams(w http.ResponseWriter, r *http.Request) {
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
	query := strings.TrimSpace(r.URL.Query().Get(searchQueryKey))
	if query == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: searchQueryKey, Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	_, season, err := loadLeague(ctx, db.Queries, leagueID)
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
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load schedule", Err: err})
		return
	}
	tiers := make([]schedule.Tier, 0, len(rows))
	for _, row := range rows {
		tiers = append(tiers, row.Tier())
	}

	matches := searchTeams(query, tiers)
	if matches == nil {
		matches = []teamMatch{}
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"week":    week,
		"matches": matches,
	}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write search response")
	}
}
