// services/leaderboard_service.go - derived standings and player rollups
package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"matchpanel/models"

	"gorm.io/gorm"
)

// LeaderboardService computes standings and player aggregates on read.
// Nothing here is cached or persisted; the raw counters are the source of
// truth.
type LeaderboardService struct {
	db *gorm.DB

	// resolveName maps a steam64 to a display name; defaults to the
	// cached Steam lookup and falls back to the stored row name.
	resolveName func(steamID string) string
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// WithNameResolver overrides the display-name lookup. Used by tests and by
// deployments without a Steam API key.
func (s *LeaderboardService) WithNameResolver(f func(steamID string) string) *LeaderboardService {
	s.resolveName = f
	return s
}

func (s *LeaderboardService) displayName(steamID, fallback string) string {
	if s.resolveName != nil {
		if name := s.resolveName(steamID); name != "" {
			return name
		}
	}
	return fallback
}

// TeamStanding is one row of the team leaderboard.
type TeamStanding struct {
	TeamName  string `json:"team_name"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	RoundDiff int    `json:"round_diff"`
}

// TeamStandings walks every completed, non-cancelled match (optionally one
// season's) and accumulates wins, losses and round differential per team
// across all of each match's maps. The result sorts descending by the
// (wins, losses, round diff) tuple; tied teams keep first-seen order.
func (s *LeaderboardService) TeamStandings(seasonID *uint) ([]TeamStanding, error) {
	query := s.db.Where("cancelled = ? AND end_time IS NOT NULL AND winner IS NOT NULL", false)
	if seasonID != nil {
		if err := s.seasonExists(*seasonID); err != nil {
			return nil, err
		}
		query = query.Where("season_id = ?", *seasonID)
	}

	var matches []models.Match
	if err := query.Order("id").Find(&matches).Error; err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var standings []TeamStanding

	entry := func(name string) *TeamStanding {
		if i, ok := index[name]; ok {
			return &standings[i]
		}
		standings = append(standings, TeamStanding{TeamName: name})
		index[name] = len(standings) - 1
		return &standings[len(standings)-1]
	}

	names := map[uint]string{}
	teamName := func(id uint) (string, error) {
		if name, ok := names[id]; ok {
			return name, nil
		}
		var team models.Team
		if err := s.db.Select("id", "name").First(&team, id).Error; err != nil {
			return "", err
		}
		names[id] = team.Name
		return team.Name, nil
	}

	for _, match := range matches {
		var maps []models.MapStats
		if err := s.db.Where("match_id = ?", match.ID).Order("map_number").Find(&maps).Error; err != nil {
			return nil, err
		}

		for _, ms := range maps {
			if ms.Winner == nil {
				continue
			}

			winnerID, loserID := match.Team1ID, match.Team2ID
			winnerRounds, loserRounds := ms.Team1Score, ms.Team2Score
			if *ms.Winner != match.Team1ID {
				winnerID, loserID = match.Team2ID, match.Team1ID
				winnerRounds, loserRounds = ms.Team2Score, ms.Team1Score
			}

			winnerName, err := teamName(winnerID)
			if err != nil {
				return nil, err
			}
			loserName, err := teamName(loserID)
			if err != nil {
				return nil, err
			}

			diff := winnerRounds - loserRounds
			w := entry(winnerName)
			w.Wins++
			w.RoundDiff += diff
			l := entry(loserName)
			l.Losses++
			l.RoundDiff -= diff
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses > b.Losses
		}
		return a.RoundDiff > b.RoundDiff
	})

	return standings, nil
}

// PlayerSummary aggregates one player's per-map rows: raw counters summed,
// derived metrics averaged across rows.
type PlayerSummary struct {
	SteamID          string  `json:"steam_id"`
	Name             string  `json:"name"`
	Kills            int     `json:"kills"`
	Deaths           int     `json:"deaths"`
	Assists          int     `json:"assists"`
	FlashbangAssists int     `json:"flashbang_assists"`
	K3               int     `json:"k3"`
	K4               int     `json:"k4"`
	K5               int     `json:"k5"`
	V1               int     `json:"v1"`
	V2               int     `json:"v2"`
	V3               int     `json:"v3"`
	V4               int     `json:"v4"`
	V5               int     `json:"v5"`
	TotalRounds      int     `json:"total_rounds"`
	KDR              float64 `json:"kdr"`
	ADR              float64 `json:"adr"`
	Rating           float64 `json:"rating"`
	HSP              float64 `json:"hsp"`

	maps int
}

func (p *PlayerSummary) absorb(row *models.PlayerStats) {
	p.Kills += row.Kills
	p.Deaths += row.Deaths
	p.Assists += row.Assists
	p.FlashbangAssists += row.FlashbangAssists
	p.K3 += row.K3
	p.K4 += row.K4
	p.K5 += row.K5
	p.V1 += row.V1
	p.V2 += row.V2
	p.V3 += row.V3
	p.V4 += row.V4
	p.V5 += row.V5
	p.TotalRounds += row.RoundsPlayed

	// Accumulate raw sums; finalize divides by the row count.
	p.KDR += row.KDR()
	p.ADR += row.ADR()
	p.Rating += row.Rating()
	p.HSP += row.HSP()
	p.maps++
}

func (p *PlayerSummary) finalize() {
	if p.maps == 0 {
		return
	}
	n := float64(p.maps)
	p.KDR /= n
	p.ADR /= n
	p.Rating /= n
	p.HSP /= n
}

// PlayerLeaderboard aggregates every player with at least one qualifying
// per-map row, optionally restricted to one season's matches. Cancelled
// matches never qualify.
func (s *LeaderboardService) PlayerLeaderboard(seasonID *uint) ([]PlayerSummary, error) {
	query := s.db.Model(&models.PlayerStats{}).
		Joins("JOIN matches ON matches.id = player_stats.match_id").
		Where("matches.cancelled = ?", false)
	if seasonID != nil {
		if err := s.seasonExists(*seasonID); err != nil {
			return nil, err
		}
		query = query.Where("matches.season_id = ?", *seasonID)
	}

	var rows []models.PlayerStats
	if err := query.Order("player_stats.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var players []PlayerSummary
	for i := range rows {
		row := &rows[i]
		pos, ok := index[row.SteamID]
		if !ok {
			players = append(players, PlayerSummary{
				SteamID: row.SteamID,
				Name:    s.displayName(row.SteamID, row.Name),
			})
			pos = len(players) - 1
			index[row.SteamID] = pos
		}
		players[pos].absorb(row)
	}

	for i := range players {
		players[i].finalize()
	}
	return players, nil
}

// PlayerCareer returns one player's all-time aggregate, or ErrNotFound
// when no rows exist for the steam id.
func (s *LeaderboardService) PlayerCareer(steamID string) (*PlayerSummary, error) {
	var rows []models.PlayerStats
	err := s.db.Where("steam_id = ?", steamID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no stats for %s", ErrNotFound, steamID)
	}

	summary := PlayerSummary{
		SteamID: steamID,
		Name:    s.displayName(steamID, rows[0].Name),
	}
	for i := range rows {
		summary.absorb(&rows[i])
	}
	summary.finalize()
	return &summary, nil
}

func (s *LeaderboardService) seasonExists(id uint) error {
	var season models.Season
	if err := s.db.Select("id").First(&season, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: season %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
