package handlers

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"matchpanel/database"
	"matchpanel/models"
	"matchpanel/rcon"
	"matchpanel/utils"

	"github.com/gofiber/fiber/v2"
)

type ServerRequest struct {
	DisplayName  string `json:"display_name"`
	IPString     string `json:"ip_string"`
	Port         int    `json:"port"`
	RconPassword string `json:"rcon_password"`
	PublicServer bool   `json:"public_server"`
}

// ListServers returns the caller's servers plus public ones.
func ListServers(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var servers []models.GameServer
	if err := database.GetDB().
		Where("user_id = ? OR public_server = ?", user.ID, true).
		Order("id").Find(&servers).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load servers"})
	}

	return c.JSON(fiber.Map{"success": true, "servers": servers})
}

// GetServer returns one server the caller may see.
func GetServer(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	var server models.GameServer
	if err := database.GetDB().First(&server, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Server not found"})
	}
	if server.UserID != user.ID && !server.PublicServer && !user.HasAdminFlag() {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your server"})
	}

	return c.JSON(fiber.Map{"success": true, "server": server})
}

// CreateServer registers a game server, encrypting the rcon password at rest.
func CreateServer(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ServerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.IPString = strings.TrimSpace(req.IPString)
	if req.IPString == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Server address is required"})
	}
	if req.Port == 0 {
		req.Port = 27015
	}

	db := database.GetDB()

	maxServers := utils.EnvInt("USER_MAX_SERVERS", -1)
	if maxServers >= 0 && !user.HasAdminFlag() {
		var count int64
		db.Model(&models.GameServer{}).Where("user_id = ?", user.ID).Count(&count)
		if count >= int64(maxServers) {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "Server limit reached"})
		}
	}

	if err := checkServerConnection(req.IPString, req.Port, req.RconPassword); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Unable to reach server: " + err.Error()})
	}

	server := models.GameServer{
		UserID:       user.ID,
		DisplayName:  req.DisplayName,
		IPString:     req.IPString,
		Port:         req.Port,
		RconPassword: encryptRcon(req.RconPassword),
		PublicServer: req.PublicServer && user.HasAdminFlag(),
	}

	if err := db.Create(&server).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create server"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "server": server})
}

// UpdateServer edits server details. The rcon password is only replaced
// when a new one is supplied.
func UpdateServer(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var server models.GameServer
	if err := db.First(&server, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Server not found"})
	}
	if !server.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your server"})
	}

	var req ServerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.IPString != "" {
		server.IPString = strings.TrimSpace(req.IPString)
	}
	if req.Port != 0 {
		server.Port = req.Port
	}
	server.DisplayName = req.DisplayName
	if req.RconPassword != "" {
		server.RconPassword = encryptRcon(req.RconPassword)
	}
	if user.HasAdminFlag() {
		server.PublicServer = req.PublicServer
	}

	if err := checkServerConnection(server.IPString, server.Port, decryptRcon(server.RconPassword)); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Unable to reach server: " + err.Error()})
	}

	if err := db.Save(&server).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update server"})
	}

	return c.JSON(fiber.Map{"success": true, "server": server})
}

// DeleteServer removes a server that no match is currently using.
func DeleteServer(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	db := database.GetDB()

	var server models.GameServer
	if err := db.First(&server, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Server not found"})
	}
	if !server.CanEdit(user) {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not your server"})
	}
	if server.InUse {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Server is in use by a match"})
	}

	if err := db.Delete(&server).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete server"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Server deleted"})
}

func encryptRcon(password string) string {
	if password == "" {
		return ""
	}
	enc, err := utils.Encrypt(os.Getenv("DATABASE_KEY"), password)
	if err != nil {
		log.Printf("rcon password encryption failed, storing plaintext: %v", err)
		return password
	}
	return enc
}

func decryptRcon(stored string) string {
	return utils.DecryptOrPlaintext(os.Getenv("DATABASE_KEY"), stored)
}

// checkServerConnection probes the server with a harmless get5 command.
// Skipped when TESTING is set.
func checkServerConnection(host string, port int, password string) error {
	if os.Getenv("TESTING") != "" {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	client := rcon.NewClient(addr, password).WithLimits(1, 2*time.Second)
	_, err := client.Execute(rcon.CmdStatus)
	return err
}
