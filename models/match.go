// models/match.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Series formats the panel accepts. "bo1-preset" skips the veto entirely
// and plays the single configured map.
var ValidSeriesTypes = []string{"bo1-preset", "bo1", "bo2", "bo3", "bo5", "bo7"}

// Side selection modes.
const (
	SideTypeStandard    = "standard"
	SideTypeNeverKnife  = "never_knife"
	SideTypeAlwaysKnife = "always_knife"
)

// MatchState is the explicit lifecycle state, derived from the stored
// timestamps and flags. Cancelled and Finished are terminal.
type MatchState string

const (
	MatchPending   MatchState = "pending"
	MatchLive      MatchState = "live"
	MatchFinished  MatchState = "finished"
	MatchCancelled MatchState = "cancelled"
)

type Match struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	UserID   uint  `json:"user_id" gorm:"not null;index"`
	ServerID uint  `json:"server_id" gorm:"index"`
	Team1ID  uint  `json:"team1_id" gorm:"not null"`
	Team2ID  uint  `json:"team2_id" gorm:"not null"`
	SeasonID *uint `json:"season_id,omitempty" gorm:"index"`
	Winner   *uint `json:"winner,omitempty"`

	Title         string `json:"title" gorm:"size:60"`
	Team1String   string `json:"team1_string" gorm:"size:32"`
	Team2String   string `json:"team2_string" gorm:"size:32"`
	PluginVersion string `json:"plugin_version" gorm:"size:32;default:'unknown'"`

	MaxMaps     int    `json:"max_maps"`
	SkipVeto    bool   `json:"skip_veto"`
	APIKey      string `json:"-" gorm:"size:32"`
	VetoFirst   string `json:"veto_first" gorm:"size:5"` // "team1" or "team2"
	VetoMappool string `json:"veto_mappool" gorm:"size:500"`
	SideType    string `json:"side_type" gorm:"size:32"`

	Team1Score       int `json:"team1_score" gorm:"default:0"`
	Team2Score       int `json:"team2_score" gorm:"default:0"`
	Team1SeriesScore int `json:"team1_series_score" gorm:"default:0"`
	Team2SeriesScore int `json:"team2_series_score" gorm:"default:0"`

	Forfeit        bool       `json:"forfeit" gorm:"default:false"`
	Cancelled      bool       `json:"cancelled" gorm:"default:false"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	PrivateMatch   bool       `json:"private_match" gorm:"default:false"`
	EnforceTeams   bool       `json:"enforce_teams" gorm:"default:true"`
	MinPlayerReady int        `json:"min_player_ready" gorm:"default:5"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Per-map rows, filled in by the service layer when a score is needed.
	// Not a persisted column.
	MapStats []MapStats `json:"-" gorm:"-"`
}

func (Match) TableName() string {
	return "matches"
}

// MatchSpectator grants one steam64 spectator access to a match.
type MatchSpectator struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	MatchID uint   `json:"match_id" gorm:"not null;index"`
	Auth    string `json:"auth" gorm:"size:17;not null"`
}

func (MatchSpectator) TableName() string {
	return "match_spectators"
}

// Status derives the lifecycle state. The cancelled flag dominates, so a
// row can never present as both cancelled and live/finished.
func (m *Match) Status() MatchState {
	switch {
	case m.Cancelled:
		return MatchCancelled
	case m.EndTime != nil:
		return MatchFinished
	case m.StartTime != nil:
		return MatchLive
	default:
		return MatchPending
	}
}

func (m *Match) Pending() bool   { return m.Status() == MatchPending }
func (m *Match) Live() bool      { return m.Status() == MatchLive }
func (m *Match) Finished() bool  { return m.Status() == MatchFinished }
func (m *Match) Finalized() bool { return m.Cancelled || m.Finished() }

// ValidTransition reports whether the lifecycle may move from one state to
// another. Terminal states have no outgoing edges.
func ValidTransition(from, to MatchState) bool {
	switch from {
	case MatchPending:
		return to == MatchLive || to == MatchCancelled || to == MatchFinished
	case MatchLive:
		return to == MatchFinished || to == MatchCancelled
	default:
		return false
	}
}

// MapsToWin returns the series win threshold: max_maps/2+1. Not meaningful
// for bo2, which uses the both-maps-count flag instead (see BuildConfig).
func (m *Match) MapsToWin() int {
	return m.MaxMaps/2 + 1
}

// Mappool splits the stored space-joined veto pool.
func (m *Match) Mappool() []string {
	if m.VetoMappool == "" {
		return nil
	}
	return strings.Fields(m.VetoMappool)
}

// CurrentScore reports the running score for display. A one-map series
// keeps its aggregate columns at 0:0 until the map finishes, so the score
// comes from the single map row instead. Longer series count maps won.
func (m *Match) CurrentScore() (int, int) {
	if m.MaxMaps == 1 {
		for i := range m.MapStats {
			if m.MapStats[i].MapNumber == 0 {
				return m.MapStats[i].Team1Score, m.MapStats[i].Team2Score
			}
		}
		return 0, 0
	}
	return m.Team1Score, m.Team2Score
}

func (m *Match) StatusString() string {
	switch m.Status() {
	case MatchPending:
		return "Pending"
	case MatchLive:
		t1, t2 := m.CurrentScore()
		return fmt.Sprintf("Live, %d:%d", t1, t2)
	case MatchFinished:
		return "Finished"
	default:
		return "Cancelled"
	}
}

// Veto is one pick/veto action in a match's map selection sequence.
// Rows are appended in the order the actions happen.
type Veto struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	MatchID    uint   `json:"match_id" gorm:"not null;index"`
	TeamName   string `json:"team_name" gorm:"size:64"`
	Map        string `json:"map" gorm:"size:32"`
	PickOrVeto string `json:"pick_or_veto" gorm:"size:4;default:'veto'"`
}

func (Veto) TableName() string {
	return "vetoes"
}

// MatchAudit is an append-only record of an administrative console command
// issued against a match.
type MatchAudit struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id"`
	MatchID      uint      `json:"match_id" gorm:"index"`
	TimeAffected time.Time `json:"time_affected"`
	CmdUsed      string    `json:"cmd_used" gorm:"size:4000"`
}

func (MatchAudit) TableName() string {
	return "match_audits"
}
