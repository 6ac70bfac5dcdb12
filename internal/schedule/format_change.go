package schedule

import (
	"fmt"
	"strings"
)

// FormatChangeResult is the outcome of ValidateFormatChange. Reason is set
// only when IsValid is false and is meant to be shown to the user.
type FormatChangeResult struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason,omitempty"`
}

// ValidateFormatChange decides whether a tier holding lineup can switch to
// newFormatID without displacing anyone. Every position label is scanned, not
// only the ones the current format uses.
func ValidateFormatChange(lineup Lineup, newFormatID string) FormatChangeResult {
	newPositions := PositionsForFormat(newFormatID)
	occupants := lineup.Occupied()
	if len(occupants) <= len(newPositions) {
		return FormatChangeResult{IsValid: true}
	}

	names := make([]string, 0, len(occupants))
	for _, occupant := range occupants {
		names = append(names, occupant.Team.Name)
	}
	return FormatChangeResult{
		IsValid: false,
		Reason: fmt.Sprintf(
			"Current tier has %d teams (%s), but format %s only supports %d teams. Remove teams first.",
			len(occupants),
			strings.Join(names, ", "),
			FormatLabel(newFormatID),
			len(newPositions),
		),
	}
}

// RepackTeamsForFormat compacts the occupied slots of lineup, in alphabet
// order, onto the positions of newFormatID. It does not validate: teams beyond
// the new capacity are dropped, so callers check ValidateFormatChange first.
func RepackTeamsForFormat(lineup Lineup, newFormatID string) Lineup {
	newPositions := PositionsForFormat(newFormatID)
	repacked := NewLineup()
	for i, occupant := range lineup.Occupied() {
		if i >= len(newPositions) {
			break
		}
		repacked[newPositions[i]] = occupant.Team
	}
	return repacked
}

// ChangeFormat validates and applies a format change, returning the updated
// tier. A change that would displace teams yields a *FormatChangeError.
func ChangeFormat(tier Tier, newFormatID string) (Tier, error) {
	if tier.IsCompleted {
		return tier, ErrTierCompleted
	}
	result := ValidateFormatChange(tier.Positions, newFormatID)
	if !result.IsValid {
		return tier, &FormatChangeError{Format: newFormatID, Reason: result.Reason}
	}
	updated := tier
	updated.Format = newFormatID
	updated.Positions = RepackTeamsForFormat(tier.Positions, newFormatID)
	return updated, nil
}
