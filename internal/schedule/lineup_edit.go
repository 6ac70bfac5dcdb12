package schedule

import (
	"fmt"
	"strings"
)

// PlaceTeam seats a team at an empty, active position of tier.
func PlaceTeam(tier Tier, position Position, team TeamSlot) (Tier, error) {
	if err := checkEditable(tier, position); err != nil {
		return tier, err
	}
	if !tier.IsActive(position) {
		return tier, inactiveError(tier, position)
	}
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return tier, ErrEmptyTeamName
	}
	if !tier.Positions[position].IsEmpty() {
		return tier, fmt.Errorf("%w: %s", ErrPositionOccupied, position)
	}
	if existing, ok := tier.Positions.PositionOf(team.Name); ok {
		return tier, fmt.Errorf("%w: %q at %s", ErrDuplicateTeam, team.Name, existing)
	}

	updated := tier
	updated.Positions = tier.Positions.Clone()
	updated.Positions[position] = team
	return updated, nil
}

// RemoveTeam clears a position and returns the team that was there.
func RemoveTeam(tier Tier, position Position) (Tier, TeamSlot, error) {
	if err := checkEditable(tier, position); err != nil {
		return tier, TeamSlot{}, err
	}
	removed := tier.Positions[position]
	if removed.IsEmpty() {
		return tier, TeamSlot{}, fmt.Errorf("%w: %s", ErrPositionEmpty, position)
	}

	updated := tier
	updated.Positions = tier.Positions.Clone()
	updated.Positions[position] = TeamSlot{}
	return updated, removed, nil
}

// MoveTeam drags the team at fromPos of from onto toPos of to. An occupied
// target is swapped back into fromPos. Pass the same tier twice to move
// within a tier; both returned values are then the same updated tier.
func MoveTeam(from Tier, fromPos Position, to Tier, toPos Position) (Tier, Tier, error) {
	if err := checkEditable(from, fromPos); err != nil {
		return from, to, err
	}
	if err := checkEditable(to, toPos); err != nil {
		return from, to, err
	}
	moving := from.Positions[fromPos]
	if moving.IsEmpty() {
		return from, to, fmt.Errorf("%w: %s", ErrPositionEmpty, fromPos)
	}
	if !to.IsActive(toPos) {
		return from, to, inactiveError(to, toPos)
	}

	if from.ID == to.ID {
		if fromPos == toPos {
			return from, to, nil
		}
		displaced := from.Positions[toPos]
		if !displaced.IsEmpty() && !from.IsActive(fromPos) {
			return from, to, inactiveError(from, fromPos)
		}
		updated := from
		updated.Positions = from.Positions.Clone()
		updated.Positions[toPos] = moving
		updated.Positions[fromPos] = displaced
		return updated, updated, nil
	}

	displaced := to.Positions[toPos]
	if existing, ok := to.Positions.PositionOf(moving.Name); ok && existing != toPos {
		return from, to, fmt.Errorf("%w: %q at %s", ErrDuplicateTeam, moving.Name, existing)
	}
	if !displaced.IsEmpty() {
		if !from.IsActive(fromPos) {
			return from, to, inactiveError(from, fromPos)
		}
		if existing, ok := from.Positions.PositionOf(displaced.Name); ok && existing != fromPos {
			return from, to, fmt.Errorf("%w: %q at %s", ErrDuplicateTeam, displaced.Name, existing)
		}
	}

	updatedFrom := from
	updatedFrom.Positions = from.Positions.Clone()
	updatedFrom.Positions[fromPos] = displaced
	updatedTo := to
	updatedTo.Positions = to.Positions.Clone()
	updatedTo.Positions[toPos] = moving
	return updatedFrom, updatedTo, nil
}

func checkEditable(tier Tier, position Position) error {
	if !position.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPosition, string(position))
	}
	if tier.IsCompleted {
		return fmt.Errorf("%w: tier %d", ErrTierCompleted, tier.TierNumber)
	}
	return nil
}

func inactiveError(tier Tier, position Position) error {
	return fmt.Errorf("%w: %s is not used by %s", ErrInactivePosition, position, FormatLabel(tier.Format))
}
