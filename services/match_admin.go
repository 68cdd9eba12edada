// services/match_admin.go - administrative remote actions against a live match
package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"matchpanel/models"
	"matchpanel/rcon"
)

func (s *MatchService) consoleFor(match *models.Match) (rcon.Console, *models.GameServer, error) {
	var server models.GameServer
	if err := s.db.First(&server, match.ServerID).Error; err != nil {
		return nil, nil, fmt.Errorf("%w: server %d", ErrNotFound, match.ServerID)
	}
	return s.console(&server), &server, nil
}

func (s *MatchService) audit(userID, matchID uint, command string) {
	s.db.Create(&models.MatchAudit{
		UserID:       userID,
		MatchID:      matchID,
		TimeAffected: time.Now().UTC(),
		CmdUsed:      command,
	})
}

// Pause pauses the ongoing match on the server.
func (s *MatchService) Pause(user *models.User, match *models.Match) error {
	if !s.CanAdminister(user, match) {
		return fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	console, _, err := s.consoleFor(match)
	if err != nil {
		return err
	}
	if _, err := console.Execute(rcon.CmdPause); err != nil {
		return fmt.Errorf("failed to send pause command: %w", err)
	}
	return nil
}

// Unpause resumes the ongoing match on the server.
func (s *MatchService) Unpause(user *models.User, match *models.Match) error {
	if !s.CanAdminister(user, match) {
		return fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	console, _, err := s.consoleFor(match)
	if err != nil {
		return err
	}
	if _, err := console.Execute(rcon.CmdUnpause); err != nil {
		return fmt.Errorf("failed to send unpause command: %w", err)
	}
	return nil
}

// AddPlayer whitelists an auth onto team1, team2 or spec mid-match. The
// command is audited.
func (s *MatchService) AddPlayer(user *models.User, match *models.Match, auth, team string) (string, error) {
	if !s.CanAdminister(user, match) {
		return "", fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	switch team {
	case "team1", "team2", "spec":
	default:
		return "", fmt.Errorf("%w: no valid team specified", ErrValidation)
	}
	if auth == "" {
		return "", fmt.Errorf("%w: no auth specified", ErrValidation)
	}

	console, _, err := s.consoleFor(match)
	if err != nil {
		return "", err
	}
	command := rcon.CmdAddPlayer(auth, team)
	response, err := console.Execute(command)
	if err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}
	s.audit(user.ID, match.ID, command)
	return response, nil
}

// SendCommand relays a raw console command to the match's server and
// records it in the audit log.
func (s *MatchService) SendCommand(user *models.User, match *models.Match, command string) (string, error) {
	if !s.CanAdminister(user, match) {
		return "", fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("%w: empty command", ErrValidation)
	}

	console, _, err := s.consoleFor(match)
	if err != nil {
		return "", err
	}
	response, err := console.Execute(command)
	if err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}
	s.audit(user.ID, match.ID, command)

	if response == "" {
		response = "No output"
	}
	return response, nil
}

// ListBackups asks the server for this match's round backup files.
func (s *MatchService) ListBackups(user *models.User, match *models.Match) ([]string, error) {
	if !s.CanAdminister(user, match) {
		return nil, fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	console, _, err := s.consoleFor(match)
	if err != nil {
		return nil, err
	}
	response, err := console.Execute(rcon.CmdListBackups(match.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	if response == "" {
		return []string{}, nil
	}
	files := strings.Split(response, "\n")
	sort.Strings(files)
	return files, nil
}

// RestoreBackup loads a round backup file, then silently re-enables roster
// enforcement, which the reload turns off.
func (s *MatchService) RestoreBackup(user *models.User, match *models.Match, file string) error {
	if !s.CanAdminister(user, match) {
		return fmt.Errorf("%w: you do not have access to this match", ErrAccessDenied)
	}
	if file == "" {
		return fmt.Errorf("%w: no backup file specified", ErrValidation)
	}

	console, _, err := s.consoleFor(match)
	if err != nil {
		return err
	}
	response, err := console.Execute(rcon.CmdLoadBackup(file))
	if err != nil {
		return fmt.Errorf("failed to restore backup file %s: %w", file, err)
	}
	if response == "" {
		return fmt.Errorf("failed to restore backup file %s", file)
	}

	_, _ = console.Execute(rcon.CmdCheckAuths(true))
	return nil
}

// AuditLog returns the administrative command history for a match.
func (s *MatchService) AuditLog(matchID uint) ([]models.MatchAudit, error) {
	var entries []models.MatchAudit
	err := s.db.Where("match_id = ?", matchID).Order("id").Find(&entries).Error
	return entries, err
}
