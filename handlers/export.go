package handlers

import (
	"bytes"

	"matchpanel/services"

	"github.com/gofiber/fiber/v2"
)

// MatchScoreboard returns the per-map scoreboard JSON the match page polls.
func MatchScoreboard(c *fiber.Ctx) error {
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

	board, err := leaderboardService.MatchScoreboard(match)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(board)
}

// ExportMapCSV downloads one map's scoreboard as CSV.
func ExportMapCSV(c *fiber.Ctx) error {
	user := currentUser(c)

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	mapNumber, err := paramInt(c, "n")
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

	var buf bytes.Buffer
	if err := leaderboardService.WriteMapCSV(&buf, match, mapNumber); err != nil {
		return fail(c, err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="`+services.CSVFilename(match.ID, mapNumber)+`"`)
	return c.Send(buf.Bytes())
}
