package handlers

import (
	"strings"

	"matchpanel/models"

	"github.com/gofiber/fiber/v2"
)

type AddPlayerRequest struct {
	Auth string `json:"auth"`
	Team string `json:"team"` // team1, team2 or spec
}

type RconRequest struct {
	Command string `json:"command"`
}

type RestoreBackupRequest struct {
	File string `json:"file"`
}

func loadMatchForAdmin(c *fiber.Ctx) (*models.Match, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, err
	}
	return matchService.GetMatch(id)
}

// PauseMatch pauses the live game.
func PauseMatch(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}
	if err := matchService.Pause(user, match); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Match paused"})
}

// UnpauseMatch resumes the live game.
func UnpauseMatch(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}
	if err := matchService.Unpause(user, match); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Match unpaused"})
}

// AddMatchPlayer whitelists a Steam ID onto a side mid-series.
func AddMatchPlayer(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}

	var req AddPlayerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	req.Auth = strings.TrimSpace(req.Auth)
	if req.Auth == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "auth is required"})
	}

	response, err := matchService.AddPlayer(user, match, req.Auth, req.Team)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "response": response})
}

// SendRcon runs a raw console command on the match server.
func SendRcon(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}

	var req RconRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Command) == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "command is required"})
	}

	response, err := matchService.SendCommand(user, match, req.Command)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "response": response})
}

// ListMatchBackups lists get5 round backup files on the server.
func ListMatchBackups(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}

	backups, err := matchService.ListBackups(user, match)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "backups": backups})
}

// RestoreMatchBackup rolls the live game back to a round backup.
func RestoreMatchBackup(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}

	var req RestoreBackupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if strings.TrimSpace(req.File) == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "file is required"})
	}

	if err := matchService.RestoreBackup(user, match, req.File); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Backup restored"})
}

// MatchAuditLog returns the admin command history for a match.
func MatchAuditLog(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	match, err := loadMatchForAdmin(c)
	if err != nil {
		return fail(c, err)
	}
	if match.UserID != user.ID && !user.HasAdminFlag() {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Cannot view this audit log"})
	}

	entries, err := matchService.AuditLog(match.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "audit": entries})
}
