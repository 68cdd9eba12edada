// services/export.go - broadcast scoreboard and CSV export
package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"matchpanel/models"
	"matchpanel/utils"
)

var csvHeader = []string{
	"Team", "SteamID", "Name", "Kills", "Deaths", "Assists",
	"Rating", "HSP", "FirstKills", "2K", "3K", "4K", "5K", "ADR",
}

// scoreboardEntry is one player's display row in the broadcast scoreboard.
type scoreboardEntry struct {
	Player    string  `json:"Player"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Assists   int     `json:"assists"`
	Rating    float64 `json:"rating"`
	HSP       float64 `json:"hsp"`
	FirstKill int     `json:"firstkill"`
	K2        int     `json:"k2"`
	K3        int     `json:"k3"`
	K4        int     `json:"k4"`
	K5        int     `json:"k5"`
	ADR       float64 `json:"ADR"`
}

func (s *LeaderboardService) entryFor(row *models.PlayerStats) scoreboardEntry {
	return scoreboardEntry{
		Player:    s.displayName(row.SteamID, row.Name),
		Kills:     row.Kills,
		Deaths:    row.Deaths,
		Assists:   row.Assists,
		Rating:    round(row.Rating(), 2),
		HSP:       round(row.HSP(), 2),
		FirstKill: row.FirstKills(),
		K2:        row.K2,
		K3:        row.K3,
		K4:        row.K4,
		K5:        row.K5,
		ADR:       round(row.ADR(), 1),
	}
}

// MatchScoreboard builds the broadcast document: one entry per map keyed
// map_0, map_1, ... with per-team player blocks keyed by steam id, sorted
// by kills descending, plus injected TeamName/TeamScore/map keys.
func (s *LeaderboardService) MatchScoreboard(match *models.Match) (*OrderedMap, error) {
	var team1, team2 models.Team
	if err := s.db.First(&team1, match.Team1ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, match.Team1ID)
	}
	if err := s.db.First(&team2, match.Team2ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, match.Team2ID)
	}

	var maps []models.MapStats
	if err := s.db.Where("match_id = ?", match.ID).Order("map_number").Find(&maps).Error; err != nil {
		return nil, err
	}

	doc := NewOrderedMap()
	for i := range maps {
		ms := &maps[i]
		var rows []models.PlayerStats
		if err := s.db.Where("map_id = ?", ms.ID).Order("id").Find(&rows).Error; err != nil {
			return nil, err
		}

		block := NewOrderedMap()
		block.Set(team1.Name, s.teamBlock(rows, match.Team1ID, team1.Name, ms.Team1Score))
		block.Set(team2.Name, s.teamBlock(rows, match.Team2ID, team2.Name, ms.Team2Score))
		block.Set("map", ms.MapName)
		block.Set("map_display", utils.FormatMapName(ms.MapName))
		doc.Set("map_"+strconv.Itoa(ms.MapNumber), block)
	}
	return doc, nil
}

func (s *LeaderboardService) teamBlock(rows []models.PlayerStats, teamID uint, teamName string, teamScore int) *OrderedMap {
	var players []*models.PlayerStats
	for i := range rows {
		if rows[i].TeamID == teamID {
			players = append(players, &rows[i])
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Kills > players[j].Kills
	})

	block := NewOrderedMap()
	for _, p := range players {
		block.Set(p.SteamID, s.entryFor(p))
	}
	block.Set("TeamName", teamName)
	block.Set("TeamScore", teamScore)
	return block
}

// WriteMapCSV streams one map's player rows as CSV with the fixed
// 14-column layout, one row per player.
func (s *LeaderboardService) WriteMapCSV(w io.Writer, match *models.Match, mapNumber int) error {
	var ms models.MapStats
	err := s.db.Where("match_id = ? AND map_number = ?", match.ID, mapNumber).First(&ms).Error
	if err != nil {
		return fmt.Errorf("%w: map %d of match %d", ErrNotFound, mapNumber, match.ID)
	}

	var rows []models.PlayerStats
	if err := s.db.Where("map_id = ?", ms.ID).Order("id").Find(&rows).Error; err != nil {
		return err
	}

	names := map[uint]string{}
	teamName := func(id uint) string {
		if name, ok := names[id]; ok {
			return name
		}
		var team models.Team
		if err := s.db.Select("id", "name").First(&team, id).Error; err == nil {
			names[id] = team.Name
		}
		return names[id]
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := writer.Write(s.csvRow(&rows[i], teamName(rows[i].TeamID))); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *LeaderboardService) csvRow(row *models.PlayerStats, teamName string) []string {
	return []string{
		teamName,
		row.SteamID,
		s.displayName(row.SteamID, row.Name),
		strconv.Itoa(row.Kills),
		strconv.Itoa(row.Deaths),
		strconv.Itoa(row.Assists),
		strconv.FormatFloat(round(row.Rating()*100, 2), 'f', -1, 64),
		strconv.FormatFloat(round(row.HSP()*100, 2), 'f', -1, 64),
		strconv.Itoa(row.FirstKills()),
		strconv.Itoa(row.K2),
		strconv.Itoa(row.K3),
		strconv.Itoa(row.K4),
		strconv.Itoa(row.K5),
		strconv.FormatFloat(round(row.ADR(), 1), 'f', -1, 64),
	}
}

// CSVFilename is the content-disposition name for a map export.
func CSVFilename(matchID uint, mapNumber int) string {
	return fmt.Sprintf("export_data_match_%d_map_%d.csv", matchID, mapNumber)
}
