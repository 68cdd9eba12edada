// middleware/auth.go
package middleware

import (
	"errors"
	"os"
	"strings"
	"time"

	"matchpanel/database"
	"matchpanel/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func parseBearer(c *fiber.Ctx) (jwt.MapClaims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

// AuthMiddleware requires a valid bearer token and stashes the user's
// identity in the request context.
func AuthMiddleware(c *fiber.Ctx) error {
	claims, err := parseBearer(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("steamId", claims["steam_id"])
	c.Locals("isAdmin", claims["is_admin"])
	c.Locals("isSuperAdmin", claims["is_super_admin"])
	return c.Next()
}

// OptionalAuthMiddleware resolves the user when a token is present but
// lets anonymous requests through. Public listings need this.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	if claims, err := parseBearer(c); err == nil {
		c.Locals("userId", claims["user_id"])
		c.Locals("steamId", claims["steam_id"])
		c.Locals("isAdmin", claims["is_admin"])
		c.Locals("isSuperAdmin", claims["is_super_admin"])
	}
	return c.Next()
}

// SuperAdminMiddleware requires a super admin token.
func SuperAdminMiddleware(c *fiber.Ctx) error {
	claims, err := parseBearer(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if isSuper, _ := claims["is_super_admin"].(bool); !isSuper {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Super admin access required"})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("steamId", claims["steam_id"])
	c.Locals("isAdmin", claims["is_admin"])
	c.Locals("isSuperAdmin", claims["is_super_admin"])
	return c.Next()
}

// CurrentUser loads the authenticated user row, or nil for anonymous
// requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	raw := c.Locals("userId")
	if raw == nil {
		return nil
	}

	var userID uint
	switch v := raw.(type) {
	case float64: // JWT claims decode numbers as float64
		userID = uint(v)
	case uint:
		userID = v
	default:
		return nil
	}

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return nil
	}
	return &user
}
