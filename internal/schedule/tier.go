package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Position is a slot label within a tier.
type Position string

const (
	PositionA Position = "A"
	PositionB Position = "B"
	PositionC Position = "C"
	PositionD Position = "D"
	PositionE Position = "E"
	PositionF Position = "F"
)

// PositionLabels is the fixed position alphabet. Its order is the order teams
// are repacked in.
var PositionLabels = [...]Position{PositionA, PositionB, PositionC, PositionD, PositionE, PositionF}

// ParsePosition accepts a position label in either case.
func ParsePosition(raw string) (Position, error) {
	candidate := Position(strings.ToUpper(strings.TrimSpace(raw)))
	for _, label := range PositionLabels {
		if label == candidate {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, raw)
}

func (p Position) valid() bool {
	for _, label := range PositionLabels {
		if label == p {
			return true
		}
	}
	return false
}

func (p Position) column() string {
	return strings.ToLower(string(p))
}

// TeamSlot is a team seated at a position. The zero value is an empty slot.
type TeamSlot struct {
	Name    string `json:"name"`
	Ranking int    `json:"ranking"`
}

func (s TeamSlot) IsEmpty() bool {
	return strings.TrimSpace(s.Name) == ""
}

// Occupant pairs an occupied position with its team.
type Occupant struct {
	Position Position `json:"position"`
	Team     TeamSlot `json:"team"`
}

// Lineup maps every position label to its slot.
type Lineup map[Position]TeamSlot

// NewLineup returns a lineup with every label present and empty.
func NewLineup() Lineup {
	lineup := make(Lineup, len(PositionLabels))
	for _, label := range PositionLabels {
		lineup[label] = TeamSlot{}
	}
	return lineup
}

// Clone returns a copy with every label present.
func (l Lineup) Clone() Lineup {
	out := NewLineup()
	for _, label := range PositionLabels {
		if slot, ok := l[label]; ok {
			out[label] = slot
		}
	}
	return out
}

// Occupied lists occupied positions in alphabet order.
func (l Lineup) Occupied() []Occupant {
	var occupants []Occupant
	for _, label := range PositionLabels {
		slot, ok := l[label]
		if !ok || slot.IsEmpty() {
			continue
		}
		occupants = append(occupants, Occupant{Position: label, Team: slot})
	}
	return occupants
}

// PositionOf returns the position holding the named team.
func (l Lineup) PositionOf(name string) (Position, bool) {
	name = strings.TrimSpace(name)
	for _, occupant := range l.Occupied() {
		if strings.EqualFold(strings.TrimSpace(occupant.Team.Name), name) {
			return occupant.Position, true
		}
	}
	return "", false
}

// Record flattens the lineup into team_<letter>_name/_ranking fields.
func (l Lineup) Record() Record {
	record := make(Record, len(PositionLabels)*2)
	for _, label := range PositionLabels {
		slot := l[label]
		record[nameField(label)] = slot.Name
		record[rankingField(label)] = slot.Ranking
	}
	return record
}

// Tier is one scheduled grouping of teams within a league week.
type Tier struct {
	ID          int64  `json:"id"`
	LeagueID    int64  `json:"leagueId"`
	WeekNumber  int    `json:"weekNumber"`
	TierNumber  int    `json:"tierNumber"`
	Location    string `json:"location"`
	TimeSlot    string `json:"timeSlot"`
	Court       string `json:"court"`
	Format      string `json:"format"`
	Positions   Lineup `json:"positions"`
	IsCompleted bool   `json:"isCompleted"`
	IsPlayoff   bool   `json:"isPlayoff"`
}

// ActivePositions returns the positions the tier's format seats.
func (t Tier) ActivePositions() []Position {
	return PositionsForFormat(t.Format)
}

// IsActive reports whether p is seated by the tier's format.
func (t Tier) IsActive(p Position) bool {
	for _, active := range t.ActivePositions() {
		if active == p {
			return true
		}
	}
	return false
}

// GridColumns returns the layout token for the tier's format.
func (t Tier) GridColumns() string {
	return GridColumnsForTeamCount(TeamCountForFormat(t.Format))
}

// Record is a tier row in its flattened storage shape. Values are strings,
// numbers, booleans or nil.
type Record map[string]any

func nameField(p Position) string {
	return "team_" + p.column() + "_name"
}

func rankingField(p Position) string {
	return "team_" + p.column() + "_ranking"
}

// GetTeamForPosition reads the team seated at label from a flattened record.
// A missing or blank name means the position is empty; a missing ranking
// reads as 0.
func GetTeamForPosition(record Record, label Position) (TeamSlot, bool) {
	name := stringValue(record[nameField(label)])
	if strings.TrimSpace(name) == "" {
		return TeamSlot{}, false
	}
	return TeamSlot{Name: name, Ranking: intValue(record[rankingField(label)])}, true
}

// LineupFromRecord unflattens every position of a record.
func LineupFromRecord(record Record) Lineup {
	lineup := NewLineup()
	for _, label := range PositionLabels {
		if slot, ok := GetTeamForPosition(record, label); ok {
			lineup[label] = slot
		}
	}
	return lineup
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return ""
	}
}

func intValue(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f)
		}
		return 0
	case string:
		return parseIntString(v)
	case []byte:
		return parseIntString(string(v))
	default:
		return 0
	}
}

func parseIntString(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return floatToInt(f)
	}
	return 0
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
