package schedule

import "errors"

var (
	ErrUnknownPosition  = errors.New("unknown position")
	ErrInactivePosition = errors.New("position is not used by the tier format")
	ErrPositionOccupied = errors.New("position is already occupied")
	ErrPositionEmpty    = errors.New("position is empty")
	ErrEmptyTeamName    = errors.New("team name is required")
	ErrDuplicateTeam    = errors.New("team is already in this tier")
	ErrTierCompleted    = errors.New("tier is completed")
)

// FormatChangeError reports a format change that would displace teams.
type FormatChangeError struct {
	Format string
	Reason string
}

func (e *FormatChangeError) Error() string {
	return e.Reason
}
