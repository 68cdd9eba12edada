package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func configFixture() (*Match, *Team, *Team) {
	match := &Match{
		ID:             42,
		Title:          "Map {MAPNUMBER} of {MAXMAPS}",
		MaxMaps:        3,
		SkipVeto:       false,
		SideType:       SideTypeStandard,
		VetoFirst:      "team1",
		VetoMappool:    "de_dust2 de_mirage de_inferno",
		EnforceTeams:   true,
		MinPlayerReady: 5,
	}
	team1 := &Team{
		Name: "Alpha",
		Tag:  "ALP",
		Flag: "se",
		Auths: []TeamAuth{
			{Slot: 1, Auth: "76561198000000002", Name: "second"},
			{Slot: 0, Auth: "76561198000000001", Name: "first"},
		},
	}
	team2 := &Team{
		Name: "Bravo",
		Tag:  "BRV",
		Flag: "us",
		Auths: []TeamAuth{
			{Slot: 0, Auth: "76561198000000003", Name: "third"},
		},
	}
	return match, team1, team2
}

func TestBuildMatchConfigDeterministic(t *testing.T) {
	match, team1, team2 := configFixture()

	first, err := json.Marshal(BuildMatchConfig(match, team1, team2, nil, "http://panel.local/"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(BuildMatchConfig(match, team1, team2, nil, "http://panel.local/"))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("two config builds of the same match should be byte identical")
	}
}

func TestBuildMatchConfigFields(t *testing.T) {
	match, team1, team2 := configFixture()
	cfg := BuildMatchConfig(match, team1, team2, nil, "http://panel.local/")

	if cfg.MatchID != "42" {
		t.Errorf("expected matchid 42, got %q", cfg.MatchID)
	}
	if cfg.MapsToWin != 2 {
		t.Errorf("bo3 should require 2 maps to win, got %d", cfg.MapsToWin)
	}
	if cfg.BO2Series {
		t.Error("bo3 must not set the bo2 flag")
	}
	if cfg.Team1.Flag != "SE" {
		t.Errorf("flag should be uppercased, got %q", cfg.Team1.Flag)
	}
	if cfg.Cvars["get5_check_auths"] != "1" {
		t.Error("enforce_teams should set get5_check_auths to 1")
	}
	if cfg.Spectators != nil {
		t.Error("spectator block should be omitted when nobody spectates")
	}
}

func TestBuildMatchConfigBO2(t *testing.T) {
	match, team1, team2 := configFixture()
	match.MaxMaps = 2

	cfg := BuildMatchConfig(match, team1, team2, nil, "http://panel.local/")
	if !cfg.BO2Series {
		t.Error("bo2 should set the bo2 flag")
	}
	if cfg.MapsToWin != 0 {
		t.Errorf("bo2 should not carry a win threshold, got %d", cfg.MapsToWin)
	}
}

func TestPlayerListOrder(t *testing.T) {
	match, team1, team2 := configFixture()
	cfg := BuildMatchConfig(match, team1, team2, []string{"76561198000000009"}, "http://panel.local/")

	raw, err := json.Marshal(cfg.Team1.Players)
	if err != nil {
		t.Fatal(err)
	}

	// Slot order, not insertion order of the rows.
	first := strings.Index(string(raw), "76561198000000001")
	second := strings.Index(string(raw), "76561198000000002")
	if first == -1 || second == -1 || first > second {
		t.Errorf("players should serialize in slot order, got %s", raw)
	}

	if cfg.Spectators == nil || len(cfg.Spectators.Players) != 1 {
		t.Error("spectator block should carry the provided auths")
	}
}
