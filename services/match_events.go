// services/match_events.go - state transitions reported by the game server
package services

import (
	"errors"
	"fmt"
	"time"

	"matchpanel/models"

	"gorm.io/gorm"
)

// AuthorizeEvent resolves the match a callback refers to and checks its
// API key. Terminal matches accept no further events.
func (s *MatchService) AuthorizeEvent(matchID uint, apiKey string) (*models.Match, error) {
	match, err := s.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if apiKey == "" || match.APIKey != apiKey {
		return nil, fmt.Errorf("%w: wrong API key", ErrAccessDenied)
	}
	if match.Finalized() {
		return nil, fmt.Errorf("%w: match already %s", ErrInvalidState, match.Status())
	}
	return match, nil
}

// GoLive records the server's report that the match started. Repeated
// reports are harmless.
func (s *MatchService) GoLive(match *models.Match, pluginVersion string) error {
	if match.Live() {
		return nil
	}
	if !models.ValidTransition(match.Status(), models.MatchLive) {
		return fmt.Errorf("%w: match already %s", ErrInvalidState, match.Status())
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"start_time": now}
	if pluginVersion != "" {
		updates["plugin_version"] = pluginVersion
	}
	return s.db.Model(match).Updates(updates).Error
}

// GetOrCreateMapStats returns the row for one map of a match, creating it
// lazily. Map numbers at or past the series length are rejected.
func (s *MatchService) GetOrCreateMapStats(match *models.Match, mapNumber int, mapName string) (*models.MapStats, error) {
	if mapNumber < 0 || mapNumber >= match.MaxMaps {
		return nil, fmt.Errorf("%w: map number %d out of range for a bo%d", ErrValidation, mapNumber, match.MaxMaps)
	}

	var ms models.MapStats
	err := s.db.Where("match_id = ? AND map_number = ?", match.ID, mapNumber).First(&ms).Error
	if err == nil {
		if mapName != "" && ms.MapName != mapName {
			if err := s.db.Model(&ms).Update("map_name", mapName).Error; err != nil {
				return nil, err
			}
			ms.MapName = mapName
		}
		return &ms, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	ms = models.MapStats{
		MatchID:   match.ID,
		MapNumber: mapNumber,
		MapName:   mapName,
		StartTime: &now,
	}
	if err := s.db.Create(&ms).Error; err != nil {
		return nil, err
	}
	return &ms, nil
}

// UpdateMapScore records the live per-map score.
func (s *MatchService) UpdateMapScore(match *models.Match, mapNumber, team1Score, team2Score int) error {
	if team1Score < 0 || team2Score < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrValidation)
	}
	ms, err := s.GetOrCreateMapStats(match, mapNumber, "")
	if err != nil {
		return err
	}
	return s.db.Model(ms).Updates(map[string]interface{}{
		"team1_score": team1Score,
		"team2_score": team2Score,
	}).Error
}

// FinishMap closes one map with its winner and, for multi-map series,
// bumps the match's aggregate score for the winning side.
func (s *MatchService) FinishMap(match *models.Match, mapNumber int, winnerID uint) error {
	if winnerID != match.Team1ID && winnerID != match.Team2ID {
		return fmt.Errorf("%w: winner must be one of the match's teams", ErrValidation)
	}
	ms, err := s.GetOrCreateMapStats(match, mapNumber, "")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(ms).Updates(map[string]interface{}{
			"winner":   winnerID,
			"end_time": now,
		}).Error; err != nil {
			return err
		}

		column := "team1_score"
		if winnerID == match.Team2ID {
			column = "team2_score"
		}
		return tx.Model(match).Update(column, gorm.Expr(column+" + 1")).Error
	})
}

// SetDemoFile stores the demo recording reference for a map.
func (s *MatchService) SetDemoFile(match *models.Match, mapNumber int, filename string) error {
	ms, err := s.GetOrCreateMapStats(match, mapNumber, "")
	if err != nil {
		return err
	}
	return s.db.Model(ms).Update("demo_file", filename).Error
}

// PlayerStatsUpdate carries the raw counters the game server reports for
// one player on one map.
type PlayerStatsUpdate struct {
	Name             string `json:"name"`
	Team             string `json:"team"` // team1 / team2
	Kills            int    `json:"kills"`
	Deaths           int    `json:"deaths"`
	Assists          int    `json:"assists"`
	FlashbangAssists int    `json:"flashbang_assists"`
	TeamKills        int    `json:"teamkills"`
	Suicides         int    `json:"suicides"`
	RoundsPlayed     int    `json:"roundsplayed"`
	HeadshotKills    int    `json:"headshot_kills"`
	Damage           int    `json:"damage"`
	BombPlants       int    `json:"bomb_plants"`
	BombDefuses      int    `json:"bomb_defuses"`
	V1               int    `json:"v1"`
	V2               int    `json:"v2"`
	V3               int    `json:"v3"`
	V4               int    `json:"v4"`
	V5               int    `json:"v5"`
	K1               int    `json:"1kill_rounds"`
	K2               int    `json:"2kill_rounds"`
	K3               int    `json:"3kill_rounds"`
	K4               int    `json:"4kill_rounds"`
	K5               int    `json:"5kill_rounds"`
	FirstKillT       int    `json:"firstkill_t"`
	FirstKillCT      int    `json:"firstkill_ct"`
	FirstDeathT      int    `json:"firstdeath_t"`
	FirstDeathCT     int    `json:"firstdeath_ct"`
}

// UpsertPlayerStats creates or updates one player's raw counters for a
// map. Maps cap out at MaxPlayersPerMap distinct players.
func (s *MatchService) UpsertPlayerStats(match *models.Match, mapNumber int, steamID string, u PlayerStatsUpdate) (*models.PlayerStats, error) {
	if steamID == "" {
		return nil, fmt.Errorf("%w: missing steam id", ErrValidation)
	}
	ms, err := s.GetOrCreateMapStats(match, mapNumber, "")
	if err != nil {
		return nil, err
	}

	teamID := match.Team1ID
	if u.Team == "team2" {
		teamID = match.Team2ID
	}

	var ps models.PlayerStats
	err = s.db.Where("map_id = ? AND steam_id = ?", ms.ID, steamID).First(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var count int64
		s.db.Model(&models.PlayerStats{}).Where("map_id = ?", ms.ID).Count(&count)
		if count >= models.MaxPlayersPerMap {
			return nil, fmt.Errorf("%w: player cap reached for this map", ErrConflict)
		}
		ps = models.PlayerStats{
			MatchID: match.ID,
			MapID:   ms.ID,
			SteamID: steamID,
		}
	} else if err != nil {
		return nil, err
	}

	ps.TeamID = teamID
	if u.Name != "" {
		ps.Name = u.Name
	}
	ps.Kills = u.Kills
	ps.Deaths = u.Deaths
	ps.Assists = u.Assists
	ps.FlashbangAssists = u.FlashbangAssists
	ps.TeamKills = u.TeamKills
	ps.Suicides = u.Suicides
	ps.RoundsPlayed = u.RoundsPlayed
	ps.HeadshotKills = u.HeadshotKills
	ps.Damage = u.Damage
	ps.BombPlants = u.BombPlants
	ps.BombDefuses = u.BombDefuses
	ps.V1, ps.V2, ps.V3, ps.V4, ps.V5 = u.V1, u.V2, u.V3, u.V4, u.V5
	ps.K1, ps.K2, ps.K3, ps.K4, ps.K5 = u.K1, u.K2, u.K3, u.K4, u.K5
	ps.FirstKillT = u.FirstKillT
	ps.FirstKillCT = u.FirstKillCT
	ps.FirstDeathT = u.FirstDeathT
	ps.FirstDeathCT = u.FirstDeathCT

	if err := s.db.Save(&ps).Error; err != nil {
		return nil, err
	}
	return &ps, nil
}

// FinishMatch records the server's final report and releases the server
// lock.
func (s *MatchService) FinishMatch(match *models.Match, winnerID *uint) error {
	if !models.ValidTransition(match.Status(), models.MatchFinished) {
		return fmt.Errorf("%w: match already %s", ErrInvalidState, match.Status())
	}
	if winnerID != nil && *winnerID != match.Team1ID && *winnerID != match.Team2ID {
		return fmt.Errorf("%w: winner must be one of the match's teams", ErrValidation)
	}

	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"end_time": now}
		if winnerID != nil {
			updates["winner"] = *winnerID
		}
		if err := tx.Model(match).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.GameServer{}).
			Where("id = ?", match.ServerID).
			Update("in_use", false).Error
	})
}
