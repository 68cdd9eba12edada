package handlers

import (
	"os"
	"strings"
	"time"

	"matchpanel/database"
	"matchpanel/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	SteamID  string `json:"steam_id"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new panel account tied to a Steam ID.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.SteamID = strings.TrimSpace(req.SteamID)
	if req.Username == "" || req.Password == "" || req.SteamID == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "username, password and steam_id are required"})
	}

	db := database.GetDB()

	var count int64
	db.Model(&models.User{}).Where("username = ? OR steam_id = ?", req.Username, req.SteamID).Count(&count)
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Username or Steam ID already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to hash password"})
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}

	user := models.User{
		Username:   req.Username,
		Password:   string(hashed),
		SteamID:    req.SteamID,
		Name:       name,
		Admin:      steamIDListed("ADMIN_IDS", req.SteamID),
		SuperAdmin: steamIDListed("SUPER_ADMIN_IDS", req.SteamID),
	}

	if err := db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create account"})
	}

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Login authenticates with username and password.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid credentials"})
	}

	// Admin flags follow env lists, re-checked at each login.
	admin := steamIDListed("ADMIN_IDS", user.SteamID)
	superAdmin := steamIDListed("SUPER_ADMIN_IDS", user.SteamID)
	now := time.Now()
	db.Model(&user).Updates(map[string]interface{}{
		"admin":       admin,
		"super_admin": superAdmin,
		"last_login":  now,
	})
	user.Admin = admin
	user.SuperAdmin = superAdmin
	user.LastLogin = now

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user's profile.
func Me(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func steamIDListed(envVar, steamID string) bool {
	for _, id := range strings.Split(os.Getenv(envVar), ",") {
		if id != "" && strings.TrimSpace(id) == steamID {
			return true
		}
	}
	return false
}

func generateToken(user models.User) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", fiber.NewError(500, "JWT_SECRET not configured")
	}

	claims := jwt.MapClaims{
		"user_id":        user.ID,
		"steam_id":       user.SteamID,
		"is_admin":       user.Admin,
		"is_super_admin": user.SuperAdmin,
		"exp":            time.Now().Add(time.Hour * 720).Unix(), // 30 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
