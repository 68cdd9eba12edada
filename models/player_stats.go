// models/player_stats.go
package models

// MaxPlayersPerMap caps how many player rows a single map may accumulate.
const MaxPlayersPerMap = 40

// Reference averages the composite rating is normalized against.
const (
	averageKPR = 0.679
	averageSPR = 0.317
	averageRMK = 1.277
)

// PlayerStats holds the raw per-map counters reported by the game server
// for one player. Derived metrics (KDR, HSP, ADR, Rating) are computed on
// read and never stored.
type PlayerStats struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	MatchID uint   `json:"match_id" gorm:"not null;index"`
	MapID   uint   `json:"map_id" gorm:"not null;index"`
	TeamID  uint   `json:"team_id"`
	SteamID string `json:"steam_id" gorm:"size:40;index"`
	Name    string `json:"name" gorm:"size:40"`

	Kills            int `json:"kills" gorm:"default:0"`
	Deaths           int `json:"deaths" gorm:"default:0"`
	RoundsPlayed     int `json:"roundsplayed" gorm:"default:0"`
	Assists          int `json:"assists" gorm:"default:0"`
	FlashbangAssists int `json:"flashbang_assists" gorm:"default:0"`
	TeamKills        int `json:"teamkills" gorm:"default:0"`
	Suicides         int `json:"suicides" gorm:"default:0"`
	HeadshotKills    int `json:"headshot_kills" gorm:"default:0"`
	Damage           int `json:"damage" gorm:"default:0"`
	BombPlants       int `json:"bomb_plants" gorm:"default:0"`
	BombDefuses      int `json:"bomb_defuses" gorm:"default:0"`

	// Clutch rounds won: 1v1 .. 1v5.
	V1 int `json:"v1" gorm:"default:0"`
	V2 int `json:"v2" gorm:"default:0"`
	V3 int `json:"v3" gorm:"default:0"`
	V4 int `json:"v4" gorm:"default:0"`
	V5 int `json:"v5" gorm:"default:0"`

	// Rounds with exactly N kills: 1k .. 5k (ace).
	K1 int `json:"k1" gorm:"default:0"`
	K2 int `json:"k2" gorm:"default:0"`
	K3 int `json:"k3" gorm:"default:0"`
	K4 int `json:"k4" gorm:"default:0"`
	K5 int `json:"k5" gorm:"default:0"`

	FirstKillT   int `json:"firstkill_t" gorm:"default:0"`
	FirstKillCT  int `json:"firstkill_ct" gorm:"default:0"`
	FirstDeathT  int `json:"firstdeath_t" gorm:"default:0"`
	FirstDeathCT int `json:"firstdeath_ct" gorm:"default:0"`
}

func (PlayerStats) TableName() string {
	return "player_stats"
}

// KDR is kills per death; with zero deaths the kill count stands alone.
func (p *PlayerStats) KDR() float64 {
	if p.Deaths == 0 {
		return float64(p.Kills)
	}
	return float64(p.Kills) / float64(p.Deaths)
}

// HSP is the fraction of kills that were headshots.
func (p *PlayerStats) HSP() float64 {
	if p.Kills == 0 {
		return 0.0
	}
	return float64(p.HeadshotKills) / float64(p.Kills)
}

// ADR is average damage per round.
func (p *PlayerStats) ADR() float64 {
	if p.RoundsPlayed == 0 {
		return 0.0
	}
	return float64(p.Damage) / float64(p.RoundsPlayed)
}

// FPR is frags per round.
func (p *PlayerStats) FPR() float64 {
	if p.RoundsPlayed == 0 {
		return 0.0
	}
	return float64(p.Kills) / float64(p.RoundsPlayed)
}

// FirstKills sums opening kills across both sides.
func (p *PlayerStats) FirstKills() int {
	return p.FirstKillT + p.FirstKillCT
}

// Rating is the HLTV-style composite: kill rate, survival rate and a
// multi-kill-round rate weighted 1/4/9/16/25, each normalized against the
// reference averages, combined as (KR + 0.7*SR + RMK) / 2.7.
func (p *PlayerStats) Rating() float64 {
	if p.RoundsPlayed == 0 {
		return 0.0
	}
	rounds := float64(p.RoundsPlayed)
	killRating := float64(p.Kills) / rounds / averageKPR
	survivalRating := float64(p.RoundsPlayed-p.Deaths) / rounds / averageSPR
	killcount := float64(p.K1 + 4*p.K2 + 9*p.K3 + 16*p.K4 + 25*p.K5)
	multiKillRating := killcount / rounds / averageRMK
	return (killRating + 0.7*survivalRating + multiKillRating) / 2.7
}
