// models/map_stats.go
package models

import "time"

// MapStats is one map played within a match, map_number 0..max_maps-1.
// Rows are created lazily when the game server first reports the map.
type MapStats struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	MatchID   uint       `json:"match_id" gorm:"not null;index:idx_map_stats_match_map,unique"`
	MapNumber int        `json:"map_number" gorm:"not null;index:idx_map_stats_match_map,unique"`
	MapName   string     `json:"map_name" gorm:"size:64"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Winner    *uint      `json:"winner,omitempty"`

	Team1Score int    `json:"team1_score" gorm:"default:0"`
	Team2Score int    `json:"team2_score" gorm:"default:0"`
	DemoFile   string `json:"demo_file" gorm:"size:256"`
}

func (MapStats) TableName() string {
	return "map_stats"
}

func (ms *MapStats) Finished() bool {
	return ms.EndTime != nil && ms.Winner != nil
}
