package scoreboard

import (
	"strings"
	"testing"

	"github.com/pugstats/pugstats/pkg/match"
)

func TestFormatNotification(t *testing.T) {
	event := testEvent()
	rows := Build(event, testDemoPlayers())
	text, err := FormatNotification(event, rows, "de_dust2", "https://example.com/demo.dem")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(text, "**16 - 9**   `de_dust2`\n") {
		t.Errorf("missing score header:\n%s", text)
	}
	if !strings.Contains(text, "Team A\n") || !strings.Contains(text, "Team B\n") {
		t.Errorf("missing team sections:\n%s", text)
	}
	// the MVP line carries the demo name verbatim; only table rows get
	// underscores normalized to spaces
	if !strings.Contains(text, "Congrats to the MVP `bob_the_builder` with the highest ADR of `92.10`!") {
		t.Errorf("missing or wrong MVP line:\n%s", text)
	}
	if !strings.Contains(text, "Download demo: https://example.com/demo.dem") {
		t.Errorf("missing download line:\n%s", text)
	}
}

func TestFormatRowWidths(t *testing.T) {
	row := Row{
		Name: "a_very_long_player_name_indeed", Kills: 7, Assists: 2, Deaths: 13,
		ADR: 63.456, HSPercent: 33.333, EffFlashes: 4,
	}
	line := formatRow(3, row)
	if !strings.HasPrefix(line, " 3. a very long player ") {
		t.Errorf("name not normalized/truncated to 18 and padded to 20: %q", line)
	}
	if !strings.Contains(line, "63.46") || !strings.Contains(line, "33.33") {
		t.Errorf("expected two-decimal metrics: %q", line)
	}
}

func TestFormatSortsByADRDescending(t *testing.T) {
	event := testEvent()
	rows := Build(event, testDemoPlayers())
	text, err := FormatNotification(event, rows, "de_dust2", "link")
	if err != nil {
		t.Fatal(err)
	}

	// within team A, alice (85.3 ADR) outranks the zero-filled player
	aliceAt := strings.Index(text, "alice")
	otherAt := strings.Index(text, "STEAM 0:0:2")
	if aliceAt < 0 || otherAt < 0 || aliceAt > otherAt {
		t.Errorf("team A not ranked by ADR descending:\n%s", text)
	}
}

func TestFormatMVPTieBreak(t *testing.T) {
	event := &match.MatchEndEvent{
		Team1Stats:    match.TeamStats{Score: 10},
		Team1SteamIDs: []string{"STEAM_0:1:1"},
		Team2Stats:    match.TeamStats{Score: 10},
		Team2SteamIDs: []string{"STEAM_0:1:2"},
	}
	rows := []Row{
		{SteamID: "STEAM_0:1:1", Name: "first", ADR: 120.0},
		{SteamID: "STEAM_0:1:2", Name: "second", ADR: 120.0},
	}
	for i := 0; i < 10; i++ {
		text, err := FormatNotification(event, rows, "de_mirage", "link")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(text, "MVP `first`") {
			t.Fatalf("tie must deterministically pick the first row in scoreboard order:\n%s", text)
		}
	}
}

func TestFormatEmptyScoreboard(t *testing.T) {
	_, err := FormatNotification(testEvent(), nil, "de_dust2", "link")
	if err == nil {
		t.Fatal("expected an error for an empty scoreboard")
	}
	if _, ok := err.(match.ValidationError); !ok {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
