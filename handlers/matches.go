package handlers

import (
	"log"

	"matchpanel/database"
	"matchpanel/models"
	"matchpanel/services"

	"github.com/gofiber/fiber/v2"
)

type CreateMatchRequest struct {
	Team1ID          uint     `json:"team1_id"`
	Team2ID          uint     `json:"team2_id"`
	Team1String      string   `json:"team1_string"`
	Team2String      string   `json:"team2_string"`
	ServerID         uint     `json:"server_id"`
	SeriesType       string   `json:"series_type"`
	Title            string   `json:"title"`
	VetoMappool      []string `json:"veto_mappool"`
	SeasonID         *uint    `json:"season_id"`
	SideType         string   `json:"side_type"`
	VetoFirst        string   `json:"veto_first"`
	Team1SeriesScore int      `json:"team1_series_score"`
	Team2SeriesScore int      `json:"team2_series_score"`
	SpectatorAuths   []string `json:"spectator_auths"`
	PrivateMatch     bool     `json:"private_match"`
	EnforceTeams     bool     `json:"enforce_teams"`
	MinPlayerReady   int      `json:"min_player_ready"`
	SkipDispatch     bool     `json:"skip_dispatch"`
}

type ForfeitRequest struct {
	Winner int `json:"winner"`
}

// CreateMatch validates and commits a match, then pushes the config to the
// game server. Dispatch failure does not undo the match; it comes back as
// a warning.
func CreateMatch(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req CreateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	match, err := matchService.Create(user, services.CreateMatchParams{
		Team1ID:          req.Team1ID,
		Team2ID:          req.Team2ID,
		Team1String:      req.Team1String,
		Team2String:      req.Team2String,
		ServerID:         req.ServerID,
		SeriesType:       req.SeriesType,
		Title:            req.Title,
		VetoMappool:      req.VetoMappool,
		SeasonID:         req.SeasonID,
		SideType:         req.SideType,
		VetoFirst:        req.VetoFirst,
		Team1SeriesScore: req.Team1SeriesScore,
		Team2SeriesScore: req.Team2SeriesScore,
		SpectatorAuths:   req.SpectatorAuths,
		PrivateMatch:     req.PrivateMatch,
		EnforceTeams:     req.EnforceTeams,
		MinPlayerReady:   req.MinPlayerReady,
	})
	if err != nil {
		return fail(c, err)
	}

	warning := ""
	if !req.SkipDispatch {
		if err := matchService.Dispatch(match); err != nil {
			log.Printf("match %d created but server load failed: %v", match.ID, err)
			warning = "Match created, but the server did not accept the config: " + err.Error()
		}
	}

	resp := fiber.Map{"success": true, "match": match}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.Status(201).JSON(resp)
}

// ListMatches returns recent matches visible to the caller. Cancelled
// matches are excluded; owners see theirs under /api/matches/mine.
func ListMatches(c *fiber.Ctx) error {
	user := currentUser(c)

	var matches []models.Match
	if err := database.GetDB().
		Where("cancelled = ?", false).
		Order("id DESC").Limit(100).Find(&matches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load matches"})
	}

	visible := make([]models.Match, 0, len(matches))
	for i := range matches {
		if matchService.CanView(user, &matches[i]) {
			visible = append(visible, matches[i])
		}
	}

	return c.JSON(fiber.Map{"success": true, "matches": visible})
}

// ListMyMatches returns every match the caller owns, cancelled included.
func ListMyMatches(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var matches []models.Match
	if err := database.GetDB().
		Where("user_id = ?", user.ID).
		Order("id DESC").Find(&matches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load matches"})
	}

	return c.JSON(fiber.Map{"success": true, "matches": matches})
}

// GetMatch returns match detail: teams, per-map stats and veto history.
func GetMatch(c *fiber.Ctx) error {
	user := currentUser(c)

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	match, err := matchService.GetMatch(id)
	if err != nil {
		return fail(c, err)
	}
	if !matchService.CanView(user, match) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Cannot view this match"})
	}

	db := database.GetDB()

	var team1, team2 models.Team
	db.Preload("Auths").First(&team1, match.Team1ID)
	db.Preload("Auths").First(&team2, match.Team2ID)

	var mapStats []models.MapStats
	db.Where("match_id = ?", match.ID).Order("map_number").Find(&mapStats)

	var vetoes []models.Veto
	db.Where("match_id = ?", match.ID).Order("id").Find(&vetoes)

	return c.JSON(fiber.Map{
		"success":   true,
		"match":     match,
		"team1":     team1,
		"team2":     team2,
		"map_stats": mapStats,
		"vetoes":    vetoes,
		"status":    match.StatusString(),
	})
}

// GetMatchConfig serves the get5 match config JSON. The game server fetches
// this URL via get5_loadmatch_url before it has authenticated, so the
// endpoint is open; the config never includes the per-match API key, which
// reaches the server separately through the dispatch rcon command.
func GetMatchConfig(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	match, err := matchService.GetMatch(id)
	if err != nil {
		return fail(c, err)
	}

	cfg, err := matchService.BuildConfig(match)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(cfg)
}

// CancelMatch marks a match cancelled and frees its server.
func CancelMatch(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	match, err := matchService.GetMatch(id)
	if err != nil {
		return fail(c, err)
	}

	warning, err := matchService.Cancel(user, match)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"success": true, "message": "Match cancelled"}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// ForfeitMatch awards a 16-0 forfeit win to one side. Super admin only.
func ForfeitMatch(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	var req ForfeitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	match, err := matchService.GetMatch(id)
	if err != nil {
		return fail(c, err)
	}

	warning, err := matchService.Forfeit(user, match, req.Winner)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"success": true, "message": "Match forfeited"}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// UserMatches lists another user's matches, public info only.
func UserMatches(c *fiber.Ctx) error {
	viewer := currentUser(c)

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var owner models.User
	if err := db.First(&owner, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	var matches []models.Match
	db.Where("user_id = ? AND cancelled = ?", owner.ID, false).Order("id DESC").Find(&matches)

	visible := make([]models.Match, 0, len(matches))
	for i := range matches {
		if matchService.CanView(viewer, &matches[i]) {
			visible = append(visible, matches[i])
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":       owner.ID,
			"name":     owner.Name,
			"steam_id": owner.SteamID,
			"profile":  owner.SteamProfileURL(),
		},
		"matches": visible,
	})
}
