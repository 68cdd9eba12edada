// services/match_service.go - match lifecycle engine
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"matchpanel/models"
	"matchpanel/rcon"
	"matchpanel/utils"

	"gorm.io/gorm"
)

// ConsoleFactory opens a remote console for a server record. Swapped for a
// fake in tests; the default decrypts the stored credential and dials out.
type ConsoleFactory func(server *models.GameServer) rcon.Console

// DefaultConsoleFactory dials the real game server.
func DefaultConsoleFactory(server *models.GameServer) rcon.Console {
	password := utils.DecryptOrPlaintext(os.Getenv("DATABASE_KEY"), server.RconPassword)
	return rcon.NewClient(server.HostPort(), password)
}

type MatchService struct {
	db      *gorm.DB
	console ConsoleFactory
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db, console: DefaultConsoleFactory}
}

// WithConsole swaps the console factory. Used by tests.
func (s *MatchService) WithConsole(f ConsoleFactory) *MatchService {
	s.console = f
	return s
}

// CreateMatchParams carries everything a match is created from.
type CreateMatchParams struct {
	Team1ID          uint
	Team2ID          uint
	Team1String      string
	Team2String      string
	ServerID         uint
	SeriesType       string // bo1-preset, bo1, bo2, bo3, bo5, bo7
	Title            string
	VetoMappool      []string
	SeasonID         *uint
	SideType         string
	VetoFirst        string // CT / T / ""
	Team1SeriesScore int
	Team2SeriesScore int
	SpectatorAuths   []string
	PrivateMatch     bool
	EnforceTeams     bool
	MinPlayerReady   int
}

func seriesFormat(seriesType string) (maxMaps int, skipVeto bool, ok bool) {
	switch seriesType {
	case "bo1-preset":
		return 1, true, true
	case "bo1":
		return 1, false, true
	case "bo2":
		return 2, false, true
	case "bo3":
		return 3, false, true
	case "bo5":
		return 5, false, true
	case "bo7":
		return 7, false, true
	default:
		return 0, false, false
	}
}

// Create validates the request, reserves the server and persists a pending
// match. The first violated rule is the one reported.
func (s *MatchService) Create(user *models.User, p CreateMatchParams) (*models.Match, error) {
	maxMaps, skipVeto, ok := seriesFormat(p.SeriesType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown series type %q", ErrValidation, p.SeriesType)
	}

	if p.Team1ID == p.Team2ID {
		return nil, fmt.Errorf("%w: teams cannot be equal", ErrValidation)
	}

	if skipVeto && len(p.VetoMappool) != 1 {
		return nil, fmt.Errorf("%w: a preset bo1 needs exactly 1 map selected", ErrValidation)
	}
	if len(p.VetoMappool) < maxMaps {
		return nil, fmt.Errorf("%w: you need at least %d maps selected for a bo%d", ErrValidation, maxMaps, maxMaps)
	}

	switch p.SideType {
	case models.SideTypeStandard, models.SideTypeNeverKnife, models.SideTypeAlwaysKnife:
	default:
		return nil, fmt.Errorf("%w: unknown side type %q", ErrValidation, p.SideType)
	}

	var team1, team2 models.Team
	if err := s.db.First(&team1, p.Team1ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, p.Team1ID)
	}
	if err := s.db.First(&team2, p.Team2ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, p.Team2ID)
	}

	var server models.GameServer
	if err := s.db.First(&server, p.ServerID).Error; err != nil {
		return nil, fmt.Errorf("%w: server %d", ErrNotFound, p.ServerID)
	}
	if server.UserID != user.ID && !server.PublicServer {
		return nil, fmt.Errorf("%w: this is not your server", ErrAccessDenied)
	}

	maxMatches := utils.EnvInt("USER_MAX_MATCHES", -1)
	if maxMatches >= 0 && !user.HasAdminFlag() {
		var count int64
		s.db.Model(&models.Match{}).Where("user_id = ?", user.ID).Count(&count)
		if count >= int64(maxMatches) {
			return nil, fmt.Errorf("%w: you already have the maximum number of matches (%d) created", ErrConflict, maxMatches)
		}
	}

	var active models.Match
	err := s.db.Where("server_id = ? AND cancelled = ? AND end_time IS NULL", server.ID, false).
		First(&active).Error
	if err == nil {
		return nil, fmt.Errorf("%w: match %d is already using this server", ErrConflict, active.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vetoFirst := ""
	switch p.VetoFirst {
	case "CT":
		vetoFirst = "team1"
	case "T":
		vetoFirst = "team2"
	}

	minReady := p.MinPlayerReady
	if minReady <= 0 {
		minReady = 5
	}

	match := &models.Match{
		UserID:           user.ID,
		ServerID:         server.ID,
		Team1ID:          p.Team1ID,
		Team2ID:          p.Team2ID,
		SeasonID:         p.SeasonID,
		Title:            p.Title,
		Team1String:      p.Team1String,
		Team2String:      p.Team2String,
		MaxMaps:          maxMaps,
		SkipVeto:         skipVeto,
		APIKey:           utils.GenerateAPIKey(24),
		VetoFirst:        vetoFirst,
		VetoMappool:      strings.Join(p.VetoMappool, " "),
		SideType:         p.SideType,
		Team1SeriesScore: p.Team1SeriesScore,
		Team2SeriesScore: p.Team2SeriesScore,
		PrivateMatch:     p.PrivateMatch,
		EnforceTeams:     p.EnforceTeams,
		MinPlayerReady:   minReady,
		PluginVersion:    "unknown",
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Check-and-set under the transaction so two racing creations
		// cannot both reserve the server.
		res := tx.Model(&models.GameServer{}).
			Where("id = ? AND in_use = ?", server.ID, false).
			Update("in_use", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: server is already in use", ErrConflict)
		}

		if err := tx.Create(match).Error; err != nil {
			return err
		}

		for _, auth := range p.SpectatorAuths {
			if auth == "" {
				continue
			}
			spec := models.MatchSpectator{MatchID: match.ID, Auth: auth}
			if err := tx.Create(&spec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Force roster enforcement on the server. Best effort; creation has
	// already committed.
	console := s.console(&server)
	if client, isClient := console.(*rcon.Client); isClient {
		client.WithLimits(2, 750*time.Millisecond)
	}
	if _, err := console.Execute(rcon.CmdCheckAuths(true)); err != nil {
		log.Printf("match %d: could not force check_auths on %s: %v", match.ID, server.HostPort(), err)
	}

	log.Printf("User %d created match %d, assigned to server %d", user.ID, match.ID, server.ID)
	return match, nil
}

// GetMatch loads one match row.
func (s *MatchService) GetMatch(id uint) (*models.Match, error) {
	var match models.Match
	if err := s.db.First(&match, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.db.Where("match_id = ?", match.ID).
		Order("map_number").Find(&match.MapStats).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// BuildConfig assembles the configuration document the game server fetches.
// Pure with respect to the match row: building twice without touching the
// match yields identical output.
func (s *MatchService) BuildConfig(match *models.Match) (*models.MatchConfig, error) {
	var team1, team2 models.Team
	if err := s.db.Preload("Auths").First(&team1, match.Team1ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, match.Team1ID)
	}
	if err := s.db.Preload("Auths").First(&team2, match.Team2ID).Error; err != nil {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, match.Team2ID)
	}

	// Deployment-wide permanent spectators first, then the match's own.
	spectators := []string{}
	if ids := os.Getenv("SPECTATOR_IDS"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				spectators = append(spectators, id)
			}
		}
	}
	var matchSpectators []models.MatchSpectator
	if err := s.db.Where("match_id = ?", match.ID).Order("id").Find(&matchSpectators).Error; err != nil {
		return nil, err
	}
	for _, spec := range matchSpectators {
		spectators = append(spectators, spec.Auth)
	}

	return models.BuildMatchConfig(match, &team1, &team2, spectators, webAPIURL()), nil
}

func webAPIURL() string {
	url := os.Getenv("WEB_API_URL")
	if url == "" {
		url = "http://localhost:3000/"
	}
	return url
}

// Dispatch pushes the config URL and API key to the game server, then
// forces a map change so the plugin reloads cleanly. The match row stays
// persisted even when dispatch fails; the operator retries out of band.
func (s *MatchService) Dispatch(match *models.Match) error {
	var server models.GameServer
	if err := s.db.First(&server, match.ServerID).Error; err != nil {
		return fmt.Errorf("%w: server %d", ErrNotFound, match.ServerID)
	}

	// The plugin cannot parse URLs containing the scheme separator.
	configURL := fmt.Sprintf("%sapi/match/%d/config", webAPIURL(), match.ID)
	configURL = strings.TrimPrefix(configURL, "http://")
	configURL = strings.TrimPrefix(configURL, "https://")

	console := s.console(&server)

	loadResponse, err := console.Execute(rcon.CmdLoadMatchURL(configURL))
	if err != nil {
		return fmt.Errorf("failed to load match config on server: %w", err)
	}

	if _, err := console.Execute(rcon.CmdWebAPIKey(match.APIKey)); err != nil {
		return fmt.Errorf("failed to set web api key on server: %w", err)
	}

	// Workaround: reload the map so roster enforcement picks up reliably.
	if _, err := console.Execute(rcon.CmdForceMapDef); err != nil {
		log.Printf("match %d: forced map change failed: %v", match.ID, err)
	}

	// The load command answers with silence on success.
	if loadResponse != "" {
		return fmt.Errorf("unexpected response loading match config: %s", loadResponse)
	}
	return nil
}

// CanAdminister gates the administrative actions (cancel, pause, rcon,
// backups). Always false once the match reached a terminal state.
func (s *MatchService) CanAdminister(user *models.User, match *models.Match) bool {
	if user == nil || match.Finalized() {
		return false
	}
	if user.ID == match.UserID {
		return true
	}
	return user.HasAdminFlag() && utils.EnvBool("ADMINS_ACCESS_ALL_MATCHES", true)
}

// CanView implements the private-match visibility rule: owner, permitted
// admins, super admins and participants only.
func (s *MatchService) CanView(user *models.User, match *models.Match) bool {
	if !match.PrivateMatch {
		return true
	}
	if user == nil {
		return false
	}
	if user.ID == match.UserID || user.SuperAdmin {
		return true
	}
	if user.Admin && utils.EnvBool("ADMINS_ACCESS_ALL_MATCHES", true) {
		return true
	}

	if user.SteamID != "" {
		var count int64
		s.db.Model(&models.TeamAuth{}).
			Where("team_id IN ? AND auth = ?", []uint{match.Team1ID, match.Team2ID}, user.SteamID).
			Count(&count)
		if count > 0 {
			return true
		}
		s.db.Model(&models.PlayerStats{}).
			Where("match_id = ? AND steam_id = ?", match.ID, user.SteamID).
			Count(&count)
		if count > 0 {
			return true
		}
	}
	return false
}

// Cancel marks the match cancelled and releases the server. The database
// change commits first; the end-match command is attempted afterwards and
// its failure comes back as a warning, not an error.
func (s *MatchService) Cancel(user *models.User, match *models.Match) (warning string, err error) {
	if match.Finalized() {
		return "", fmt.Errorf("%w: match already %s", ErrInvalidState, match.Status())
	}
	if !s.CanAdminister(user, match) {
		return "", fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(match).Update("cancelled", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.GameServer{}).
			Where("id = ?", match.ServerID).
			Update("in_use", false).Error
	})
	if err != nil {
		return "", err
	}

	if warnErr := s.endMatchOnServer(match); warnErr != nil {
		warning = fmt.Sprintf("failed to notify server: %v", warnErr)
	}
	return warning, nil
}

// Forfeit ends the match administratively with a synthetic 16-0 map in
// favor of the winning side. Super admins only.
func (s *MatchService) Forfeit(user *models.User, match *models.Match, winningSide int) (warning string, err error) {
	if user == nil || !user.SuperAdmin {
		return "", fmt.Errorf("%w: only super admins may forfeit matches", ErrAccessDenied)
	}
	if winningSide != 1 && winningSide != 2 {
		return "", fmt.Errorf("%w: winning side must be 1 or 2", ErrValidation)
	}
	if !models.ValidTransition(match.Status(), models.MatchFinished) {
		return "", fmt.Errorf("%w: match already %s", ErrInvalidState, match.Status())
	}

	now := time.Now().UTC()
	winnerID := match.Team1ID
	team1Series, team2Series := 1, 0
	mapTeam1, mapTeam2 := 16, 0
	if winningSide == 2 {
		winnerID = match.Team2ID
		team1Series, team2Series = 0, 1
		mapTeam1, mapTeam2 = 0, 16
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"winner":             winnerID,
			"team1_series_score": team1Series,
			"team2_series_score": team2Series,
			"start_time":         now,
			"end_time":           now,
			"forfeit":            true,
		}
		if err := tx.Model(match).Updates(updates).Error; err != nil {
			return err
		}

		synthetic := models.MapStats{
			MatchID:    match.ID,
			MapNumber:  0,
			StartTime:  &now,
			EndTime:    &now,
			Winner:     &winnerID,
			Team1Score: mapTeam1,
			Team2Score: mapTeam2,
		}
		if err := tx.Create(&synthetic).Error; err != nil {
			return err
		}

		return tx.Model(&models.GameServer{}).
			Where("id = ?", match.ServerID).
			Update("in_use", false).Error
	})
	if err != nil {
		return "", err
	}

	if warnErr := s.endMatchOnServer(match); warnErr != nil {
		warning = fmt.Sprintf("failed to notify server: %v", warnErr)
	}
	return warning, nil
}

func (s *MatchService) endMatchOnServer(match *models.Match) error {
	var server models.GameServer
	if err := s.db.First(&server, match.ServerID).Error; err != nil {
		return err
	}
	_, err := s.console(&server).Execute(rcon.CmdEndMatch)
	return err
}

// RecordVeto appends one pick/veto action to the match's sequence.
func (s *MatchService) RecordVeto(matchID uint, teamName, mapName, pickOrVeto string) (*models.Veto, error) {
	if pickOrVeto != "pick" && pickOrVeto != "veto" {
		return nil, fmt.Errorf("%w: action must be pick or veto", ErrValidation)
	}
	veto := &models.Veto{
		MatchID:    matchID,
		TeamName:   teamName,
		Map:        mapName,
		PickOrVeto: pickOrVeto,
	}
	if err := s.db.Create(veto).Error; err != nil {
		return nil, err
	}
	return veto, nil
}

// RemainingMaps returns the match's pool minus everything already picked
// or vetoed, preserving pool order.
func (s *MatchService) RemainingMaps(match *models.Match) ([]string, error) {
	var vetoes []models.Veto
	if err := s.db.Where("match_id = ?", match.ID).Order("id").Find(&vetoes).Error; err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(vetoes))
	for _, v := range vetoes {
		used[v.Map] = true
	}
	var remaining []string
	for _, m := range match.Mappool() {
		if !used[m] {
			remaining = append(remaining, m)
		}
	}
	return remaining, nil
}
