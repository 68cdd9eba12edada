package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// TeamLeaderboard ranks teams across all completed matches.
func TeamLeaderboard(c *fiber.Ctx) error {
	standings, err := leaderboardService.TeamStandings(nil)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "standings": standings})
}

// SeasonTeamLeaderboard ranks teams within one season.
func SeasonTeamLeaderboard(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	standings, err := leaderboardService.TeamStandings(&id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "standings": standings})
}

// PlayerLeaderboard aggregates player stats across all completed matches.
func PlayerLeaderboard(c *fiber.Ctx) error {
	players, err := leaderboardService.PlayerLeaderboard(nil)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "players": players})
}

// SeasonPlayerLeaderboard aggregates player stats within one season.
func SeasonPlayerLeaderboard(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	players, err := leaderboardService.PlayerLeaderboard(&id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "players": players})
}

// PlayerCareer returns one player's lifetime aggregates.
func PlayerCareer(c *fiber.Ctx) error {
	steamID := c.Params("steamid")
	summary, err := leaderboardService.PlayerCareer(steamID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "player": summary})
}
