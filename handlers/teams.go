package handlers

import (
	"strings"

	"matchpanel/database"
	"matchpanel/models"
	"matchpanel/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TeamRequest struct {
	Name       string `json:"name"`
	Tag        string `json:"tag"`
	Flag       string `json:"flag"`
	Logo       string `json:"logo"`
	PublicTeam bool   `json:"public_team"`
	Auths      []struct {
		Auth string `json:"auth"`
		Name string `json:"name"`
	} `json:"auths"`
}

// ListTeams returns the caller's teams plus public teams.
func ListTeams(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var teams []models.Team
	if err := database.GetDB().Preload("Auths").
		Where("user_id = ? OR public_team = ?", user.ID, true).
		Order("id").Find(&teams).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load teams"})
	}

	return c.JSON(fiber.Map{"success": true, "teams": teams})
}

// GetTeam returns one team with its roster.
func GetTeam(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	var team models.Team
	if err := database.GetDB().Preload("Auths").First(&team, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Team not found"})
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// CreateTeam creates a team and its roster slots.
func CreateTeam(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Team name is required"})
	}
	if len(req.Auths) > models.MaxPlayers {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Too many players on roster"})
	}

	db := database.GetDB()

	maxTeams := utils.EnvInt("USER_MAX_TEAMS", -1)
	if maxTeams >= 0 && !user.HasAdminFlag() {
		var count int64
		db.Model(&models.Team{}).Where("user_id = ?", user.ID).Count(&count)
		if count >= int64(maxTeams) {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "Team limit reached"})
		}
	}

	team := models.Team{
		UserID:     user.ID,
		Name:       req.Name,
		Tag:        req.Tag,
		Flag:       strings.ToUpper(req.Flag),
		Logo:       req.Logo,
		PublicTeam: req.PublicTeam && user.HasAdminFlag(),
	}
	for i, a := range req.Auths {
		if strings.TrimSpace(a.Auth) == "" {
			continue
		}
		team.Auths = append(team.Auths, models.TeamAuth{
			Slot: i,
			Auth: strings.TrimSpace(a.Auth),
			Name: a.Name,
		})
	}

	if err := db.Create(&team).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create team"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "team": team})
}

// UpdateTeam replaces team fields and the full roster.
func UpdateTeam(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Team not found"})
	}
	if !team.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your team"})
	}

	var req TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if len(req.Auths) > models.MaxPlayers {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Too many players on roster"})
	}

	team.Name = strings.TrimSpace(req.Name)
	team.Tag = req.Tag
	team.Flag = strings.ToUpper(req.Flag)
	team.Logo = req.Logo
	if user.HasAdminFlag() {
		team.PublicTeam = req.PublicTeam
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&team).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamAuth{}).Error; err != nil {
			return err
		}
		for i, a := range req.Auths {
			if strings.TrimSpace(a.Auth) == "" {
				continue
			}
			auth := models.TeamAuth{
				TeamID: team.ID,
				Slot:   i,
				Auth:   strings.TrimSpace(a.Auth),
				Name:   a.Name,
			}
			if err := tx.Create(&auth).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update team"})
	}

	db.Preload("Auths").First(&team, team.ID)
	return c.JSON(fiber.Map{"success": true, "team": team})
}

// DeleteTeam removes a team that is not tied to any match.
func DeleteTeam(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Team not found"})
	}
	if !team.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your team"})
	}

	var matches int64
	db.Model(&models.Match{}).Where("team1_id = ? OR team2_id = ?", team.ID, team.ID).Count(&matches)
	if matches > 0 {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Team has match history and cannot be deleted"})
	}

	if err := db.Where("team_id = ?", team.ID).Delete(&models.TeamAuth{}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete roster"})
	}
	if err := db.Delete(&team).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete team"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Team deleted"})
}
