// handlers/api.go - callbacks posted by the get5 plugin on game servers
package handlers

import (
	"matchpanel/models"
	"matchpanel/services"

	"github.com/gofiber/fiber/v2"
)

// eventKey pulls the per-match API key from wherever the plugin put it.
func eventKey(c *fiber.Ctx) string {
	if key := c.Get("Authorization"); key != "" {
		return key
	}
	if key := c.FormValue("key"); key != "" {
		return key
	}
	return c.Query("key")
}

func authorizeEvent(c *fiber.Ctx) (*models.Match, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, err
	}
	return matchService.AuthorizeEvent(id, eventKey(c))
}

// sideToTeamID resolves the plugin's team1/team2 tokens to team IDs.
// "draw" and "none" map to nil.
func sideToTeamID(match *models.Match, side string) (*uint, bool) {
	switch side {
	case "team1":
		id := match.Team1ID
		return &id, true
	case "team2":
		id := match.Team2ID
		return &id, true
	case "", "none", "draw":
		return nil, true
	}
	return nil, false
}

// MatchGoLive marks the match live and records the plugin version.
func MatchGoLive(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		PluginVersion string `json:"plugin_version"`
	}
	_ = c.BodyParser(&body)
	if body.PluginVersion == "" {
		body.PluginVersion = c.FormValue("version")
	}

	if err := matchService.GoLive(match, body.PluginVersion); err != nil {
		return fail(c, err)
	}

	broadcastMatchUpdate(match.ID, fiber.Map{"event": "golive"})
	return c.SendString("Success")
}

// MapStart opens stats tracking for one map of the series.
func MapStart(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}
	mapNumber, err := paramInt(c, "n")
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		MapName string `json:"mapname"`
	}
	_ = c.BodyParser(&body)
	if body.MapName == "" {
		body.MapName = c.FormValue("mapname")
	}

	if _, err := matchService.GetOrCreateMapStats(match, mapNumber, body.MapName); err != nil {
		return fail(c, err)
	}

	broadcastMatchUpdate(match.ID, fiber.Map{
		"event":    "map_start",
		"map":      mapNumber,
		"map_name": body.MapName,
	})
	return c.SendString("Success")
}

// MapUpdate records the live round score on a map.
func MapUpdate(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}
	mapNumber, err := paramInt(c, "n")
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		Team1Score int `json:"team1score"`
		Team2Score int `json:"team2score"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := matchService.UpdateMapScore(match, mapNumber, body.Team1Score, body.Team2Score); err != nil {
		return fail(c, err)
	}

	broadcastMatchUpdate(match.ID, fiber.Map{
		"event":       "score_update",
		"map":         mapNumber,
		"team1_score": body.Team1Score,
		"team2_score": body.Team2Score,
	})
	return c.SendString("Success")
}

// MapFinish closes one map with its winner.
func MapFinish(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}
	mapNumber, err := paramInt(c, "n")
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		Winner string `json:"winner"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	winnerID, ok := sideToTeamID(match, body.Winner)
	if !ok || winnerID == nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "winner must be team1 or team2"})
	}

	if err := matchService.FinishMap(match, mapNumber, *winnerID); err != nil {
		return fail(c, err)
	}

	broadcastMatchUpdate(match.ID, fiber.Map{
		"event":  "map_finish",
		"map":    mapNumber,
		"winner": body.Winner,
	})
	return c.SendString("Success")
}

// PlayerUpdate upserts one player's raw stat counters on a map.
func PlayerUpdate(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}
	mapNumber, err := paramInt(c, "n")
	if err != nil {
		return fail(c, err)
	}
	steamID := c.Params("auth")

	var update services.PlayerStatsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if _, err := matchService.UpsertPlayerStats(match, mapNumber, steamID, update); err != nil {
		return fail(c, err)
	}
	return c.SendString("Success")
}

// MapDemo records the demo filename the server wrote for a map.
func MapDemo(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}
	mapNumber, err := paramInt(c, "n")
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		DemoFile string `json:"demoFile"`
	}
	_ = c.BodyParser(&body)
	if body.DemoFile == "" {
		body.DemoFile = c.FormValue("demoFile")
	}

	if err := matchService.SetDemoFile(match, mapNumber, body.DemoFile); err != nil {
		return fail(c, err)
	}
	return c.SendString("Success")
}

// MatchFinish finalizes the series and frees the server.
func MatchFinish(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		Winner string `json:"winner"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	winnerID, ok := sideToTeamID(match, body.Winner)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "winner must be team1, team2 or draw"})
	}

	if err := matchService.FinishMatch(match, winnerID); err != nil {
		return fail(c, err)
	}

	broadcastMatchUpdate(match.ID, fiber.Map{
		"event":  "match_finish",
		"winner": body.Winner,
	})
	return c.SendString("Success")
}

// RecordMatchVeto stores one pick or ban from the in-game veto.
func RecordMatchVeto(c *fiber.Ctx) error {
	match, err := authorizeEvent(c)
	if err != nil {
		return fail(c, err)
	}

	var body struct {
		Team string `json:"team"`
		Map  string `json:"map"`
		Pick string `json:"pick_or_veto"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if body.Pick == "" {
		body.Pick = "veto"
	}

	if _, err := matchService.RecordVeto(match.ID, body.Team, body.Map, body.Pick); err != nil {
		return fail(c, err)
	}
	return c.SendString("Success")
}
