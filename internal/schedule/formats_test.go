package schedule

import "testing"

func TestTeamCountForFormat(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{id: "3-teams-6-sets", want: 3},
		{id: "2-teams-4-sets", want: 2},
		{id: "2-teams-best-of-5", want: 2},
		{id: "2-teams-best-of-3", want: 2},
		{id: "4-teams-head-to-head", want: 4},
		{id: "6-teams-head-to-head", want: 6},
		{id: "2-teams-elite", want: 2},
		{id: "", want: 3},
		{id: "legacy-format", want: 3},
		{id: "2-TEAMS-ELITE", want: 3},
	}

	for _, test := range tests {
		t.Run(test.id, func(t *testing.T) {
			if got := TeamCountForFormat(test.id); got != test.want {
				t.Fatalf("TeamCountForFormat(%q) = %d, want %d", test.id, got, test.want)
			}
		})
	}
}

func TestPositionsForFormatIsAlphabetPrefix(t *testing.T) {
	ids := []string{"unknown"}
	for _, format := range Formats() {
		ids = append(ids, format.ID)
	}

	for _, id := range ids {
		positions := PositionsForFormat(id)
		if len(positions) != TeamCountForFormat(id) {
			t.Fatalf("PositionsForFormat(%q) has %d labels, want %d", id, len(positions), TeamCountForFormat(id))
		}
		for i, position := range positions {
			if position != PositionLabels[i] {
				t.Fatalf("PositionsForFormat(%q)[%d] = %s, want %s", id, i, position, PositionLabels[i])
			}
		}
	}
}

func TestPositionsForFormatReturnsCopy(t *testing.T) {
	positions := PositionsForFormat("6-teams-head-to-head")
	positions[0] = "Z"
	if PositionLabels[0] != PositionA {
		t.Fatalf("PositionLabels mutated through PositionsForFormat result")
	}
}

func TestGridColumnsForTeamCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 2, want: "2 columns"},
		{n: 3, want: "3 columns"},
		{n: 4, want: "4 columns"},
		{n: 6, want: "6 columns"},
		{n: 0, want: "3 columns"},
		{n: 5, want: "3 columns"},
		{n: -1, want: "3 columns"},
	}

	for _, test := range tests {
		if got := GridColumnsForTeamCount(test.n); got != test.want {
			t.Fatalf("GridColumnsForTeamCount(%d) = %q, want %q", test.n, got, test.want)
		}
	}
}

func TestUnknownFormatFallsBackToThreeColumns(t *testing.T) {
	got := GridColumnsForTeamCount(TeamCountForFormat("mystery"))
	if got != "3 columns" {
		t.Fatalf("grid for unknown format = %q, want 3 columns", got)
	}
}

func TestFormatLabel(t *testing.T) {
	if got := FormatLabel("2-teams-elite"); got != "2 Teams (Elite)" {
		t.Fatalf("FormatLabel(2-teams-elite) = %q", got)
	}
	if got := FormatLabel("old-format"); got != "old-format" {
		t.Fatalf("FormatLabel(old-format) = %q, want raw id", got)
	}
}

func TestFormatsReturnsCopy(t *testing.T) {
	formats := Formats()
	if len(formats) != 7 {
		t.Fatalf("Formats() returned %d entries, want 7", len(formats))
	}
	formats[0].TeamCount = 99
	if TeamCountForFormat(DefaultFormatID) != 3 {
		t.Fatalf("catalog mutated through Formats() result")
	}
}
