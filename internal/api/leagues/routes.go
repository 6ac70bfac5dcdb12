package leagues

import "net/http"

// RegisterRoutes mounts the league schedule API on mux.
func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/formats", HandleListFormats)

	mux.HandleFunc("GET /api/v1/leagues", HandleListLeagues)
	mux.HandleFunc("POST /api/v1/leagues", HandleCreateLeague)
	mux.HandleFunc("GET /api/v1/leagues/{id}/schedule", HandleSchedule)
	mux.HandleFunc("POST /api/v1/leagues/{id}/season", HandlePlanSeason)
	mux.HandleFunc("POST /api/v1/leagues/{id}/tiers", HandleCreateTier)
	mux.HandleFunc("GET /api/v1/leagues/{id}/teams/search", HandleSearchTeams)
	mux.HandleFunc("POST /api/v1/leagues/{id}/digest", HandleSendDigest)

	mux.HandleFunc("PUT /api/v1/tiers/{id}/format", HandleChangeFormat)
	mux.HandleFunc("POST /api/v1/tiers/{id}/teams", HandlePlaceTeam)
	mux.HandleFunc("DELETE /api/v1/tiers/{id}/teams/{position}", HandleRemoveTeam)
	mux.HandleFunc("POST /api/v1/tiers/move", HandleMoveTeam)
}
