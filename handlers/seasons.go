package handlers

import (
	"strings"
	"time"

	"matchpanel/database"
	"matchpanel/models"
	"matchpanel/utils"

	"github.com/gofiber/fiber/v2"
)

type SeasonRequest struct {
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

const seasonDateLayout = "2006-01-02"

// ListSeasons returns all seasons, newest first.
func ListSeasons(c *fiber.Ctx) error {
	var seasons []models.Season
	if err := database.GetDB().Order("id DESC").Find(&seasons).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load seasons"})
	}
	return c.JSON(fiber.Map{"success": true, "seasons": seasons})
}

// GetSeason returns one season and its matches.
func GetSeason(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var season models.Season
	if err := db.First(&season, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Season not found"})
	}

	var matches []models.Match
	db.Where("season_id = ? AND cancelled = ?", season.ID, false).Order("id").Find(&matches)

	return c.JSON(fiber.Map{"success": true, "season": season, "matches": matches})
}

// CreateSeason creates a season. Omitting end_date leaves it open-ended.
func CreateSeason(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req SeasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	season := models.Season{UserID: user.ID}
	if err := applySeasonRequest(&season, req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	maxSeasons := utils.EnvInt("USER_MAX_SEASONS", -1)
	if maxSeasons >= 0 && !user.HasAdminFlag() {
		var count int64
		db.Model(&models.Season{}).Where("user_id = ?", user.ID).Count(&count)
		if count >= int64(maxSeasons) {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "Season limit reached"})
		}
	}

	if err := db.Create(&season).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create season"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "season": season})
}

// UpdateSeason edits a season the caller owns.
func UpdateSeason(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var season models.Season
	if err := db.First(&season, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Season not found"})
	}
	if !season.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your season"})
	}

	var req SeasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if err := applySeasonRequest(&season, req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	if err := db.Save(&season).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update season"})
	}

	return c.JSON(fiber.Map{"success": true, "season": season})
}

// DeleteSeason removes a season with no matches attached.
func DeleteSeason(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var season models.Season
	if err := db.First(&season, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Season not found"})
	}
	if !season.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your season"})
	}

	var matches int64
	db.Model(&models.Match{}).Where("season_id = ?", season.ID).Count(&matches)
	if matches > 0 {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Season has matches and cannot be deleted"})
	}

	if err := db.Delete(&season).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete season"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Season deleted"})
}

func applySeasonRequest(season *models.Season, req SeasonRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errInvalid("Season name is required")
	}
	start, err := time.Parse(seasonDateLayout, req.StartDate)
	if err != nil {
		return errInvalid("Invalid start_date, expected YYYY-MM-DD")
	}

	season.Name = req.Name
	season.StartDate = start
	season.EndDate = nil
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := time.Parse(seasonDateLayout, *req.EndDate)
		if err != nil {
			return errInvalid("Invalid end_date, expected YYYY-MM-DD")
		}
		if !end.After(start) {
			return errInvalid("end_date must be after start_date")
		}
		season.EndDate = &end
	}
	return nil
}
