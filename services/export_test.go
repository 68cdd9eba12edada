package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"matchpanel/models"
)

func TestMatchScoreboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	owner := makeUser(t, db, "76561198000000100", false, false)
	alpha := makeTeam(t, db, owner, "Alpha")
	bravo := makeTeam(t, db, owner, "Bravo")
	match := finishedMatch(t, db, owner, alpha, bravo, [][2]int{{16, 8}})

	var ms models.MapStats
	db.Where("match_id = ?", match.ID).First(&ms)
	db.Model(&ms).Update("map_name", "de_dust2")

	// Insert in reverse kill order to exercise the sort.
	db.Create(&models.PlayerStats{MatchID: match.ID, MapID: ms.ID, TeamID: alpha.ID,
		SteamID: "76561198000000001", Name: "low", Kills: 5, RoundsPlayed: 24})
	db.Create(&models.PlayerStats{MatchID: match.ID, MapID: ms.ID, TeamID: alpha.ID,
		SteamID: "76561198000000002", Name: "high", Kills: 25, RoundsPlayed: 24})
	db.Create(&models.PlayerStats{MatchID: match.ID, MapID: ms.ID, TeamID: bravo.ID,
		SteamID: "76561198000000003", Name: "enemy", Kills: 12, RoundsPlayed: 24})

	board, err := svc.MatchScoreboard(match)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(board)
	if err != nil {
		t.Fatal(err)
	}
	out := string(raw)

	if !strings.HasPrefix(out, `{"map_0":`) {
		t.Errorf("document should be keyed by map number, got %s", out[:30])
	}
	if !strings.Contains(out, `"map":"de_dust2"`) {
		t.Error("map name should be injected into the block")
	}
	if !strings.Contains(out, `"map_display":"Dust II"`) {
		t.Error("map display label should be injected into the block")
	}
	if !strings.Contains(out, `"TeamName":"Alpha"`) || !strings.Contains(out, `"TeamScore":16`) {
		t.Error("team blocks should carry name and score")
	}

	// Kill sort: the 25-kill player serializes before the 5-kill one.
	high := strings.Index(out, "76561198000000002")
	low := strings.Index(out, "76561198000000001")
	if high == -1 || low == -1 || high > low {
		t.Errorf("players should sort by kills descending, got %s", out)
	}
}

func TestWriteMapCSV(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	owner := makeUser(t, db, "76561198000000100", false, false)
	alpha := makeTeam(t, db, owner, "Alpha")
	bravo := makeTeam(t, db, owner, "Bravo")
	match := finishedMatch(t, db, owner, alpha, bravo, [][2]int{{16, 8}})

	var ms models.MapStats
	db.Where("match_id = ?", match.ID).First(&ms)
	db.Create(&models.PlayerStats{MatchID: match.ID, MapID: ms.ID, TeamID: alpha.ID,
		SteamID: "76561198000000001", Name: "glock", Kills: 24, Deaths: 12,
		HeadshotKills: 12, RoundsPlayed: 24, Damage: 2280})

	var buf bytes.Buffer
	if err := svc.WriteMapCSV(&buf, match, 0); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if len(records[0]) != 14 {
		t.Errorf("expected 14 columns, got %d", len(records[0]))
	}
	if records[0][0] != "Team" || records[0][13] != "ADR" {
		t.Errorf("unexpected header %v", records[0])
	}

	row := records[1]
	if row[0] != "Alpha" || row[1] != "76561198000000001" || row[2] != "glock" {
		t.Errorf("unexpected identity columns %v", row[:3])
	}
	if row[3] != "24" || row[4] != "12" {
		t.Errorf("unexpected kill columns %v", row[3:5])
	}
	// HSP exports as a percentage.
	if row[7] != "50" {
		t.Errorf("expected HSP 50, got %q", row[7])
	}
	if row[13] != "95" {
		t.Errorf("expected ADR 95, got %q", row[13])
	}

	if err := svc.WriteMapCSV(&buf, match, 5); err == nil {
		t.Error("exporting a missing map should fail")
	}
}

func TestCSVFilename(t *testing.T) {
	if got := CSVFilename(2, 1); got != "export_data_match_2_map_1.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}
