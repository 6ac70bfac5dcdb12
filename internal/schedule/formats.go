// Package schedule holds the weekly league schedule rules: the game format
// catalog, tier lineups and the week arithmetic used by the schedule editor.
package schedule

// DefaultFormatID is assigned to tiers created without an explicit format.
const DefaultFormatID = "3-teams-6-sets"

const (
	defaultTeamCount   = 3
	defaultGridColumns = "3 columns"
)

// GameFormat is a catalog entry describing how many teams share a tier.
type GameFormat struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TeamCount int    `json:"teamCount"`
}

var gameFormats = []GameFormat{
	{ID: "3-teams-6-sets", Label: "3 Teams (6 Sets)", TeamCount: 3},
	{ID: "2-teams-4-sets", Label: "2 Teams (4 Sets)", TeamCount: 2},
	{ID: "2-teams-best-of-5", Label: "2 Teams (Best of 5)", TeamCount: 2},
	{ID: "2-teams-best-of-3", Label: "2 Teams (Best of 3)", TeamCount: 2},
	{ID: "4-teams-head-to-head", Label: "4 Teams (Head-to-Head)", TeamCount: 4},
	{ID: "6-teams-head-to-head", Label: "6 Teams (Head-to-Head)", TeamCount: 6},
	{ID: "2-teams-elite", Label: "2 Teams (Elite)", TeamCount: 2},
}

var gameFormatsByID = func() map[string]GameFormat {
	byID := make(map[string]GameFormat, len(gameFormats))
	for _, format := range gameFormats {
		byID[format.ID] = format
	}
	return byID
}()

var gridColumns = map[int]string{
	2: "2 columns",
	3: "3 columns",
	4: "4 columns",
	6: "6 columns",
}

// Formats returns the catalog in declaration order.
func Formats() []GameFormat {
	out := make([]GameFormat, len(gameFormats))
	copy(out, gameFormats)
	return out
}

// LookupFormat returns the catalog entry for id.
func LookupFormat(id string) (GameFormat, bool) {
	format, ok := gameFormatsByID[id]
	return format, ok
}

// FormatLabel returns the display label for id, or id itself when the format
// is not in the catalog.
func FormatLabel(id string) string {
	if format, ok := gameFormatsByID[id]; ok {
		return format.Label
	}
	return id
}

// TeamCountForFormat returns the number of teams a format seats. Unknown and
// legacy format strings fall back to 3 so the schedule view keeps rendering.
func TeamCountForFormat(id string) int {
	if format, ok := gameFormatsByID[id]; ok {
		return format.TeamCount
	}
	return defaultTeamCount
}

// PositionsForFormat returns the active position labels for a format, in
// repacking order.
func PositionsForFormat(id string) []Position {
	count := TeamCountForFormat(id)
	if count > len(PositionLabels) {
		count = len(PositionLabels)
	}
	positions := make([]Position, count)
	copy(positions, PositionLabels[:count])
	return positions
}

// GridColumnsForTeamCount returns the layout token used to render a tier with
// n teams.
func GridColumnsForTeamCount(n int) string {
	if columns, ok := gridColumns[n]; ok {
		return columns
	}
	return defaultGridColumns
}
