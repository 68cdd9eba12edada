// models/game_server.go
package models

import (
	"fmt"
	"time"
)

// GameServer is one remote game server the panel can push matches to.
// RconPassword is stored encrypted at rest (see utils.Encrypt); older rows
// may still hold plaintext from before key rotation.
type GameServer struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	DisplayName  string `json:"display_name" gorm:"size:32"`
	IPString     string `json:"ip_string" gorm:"size:32;not null"`
	Port         int    `json:"port" gorm:"default:27015"`
	RconPassword string `json:"-" gorm:"size:128"`
	InUse        bool   `json:"in_use" gorm:"default:false"`
	PublicServer bool   `json:"public_server" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GameServer) TableName() string {
	return "game_servers"
}

func (s *GameServer) HostPort() string {
	return fmt.Sprintf("%s:%d", s.IPString, s.Port)
}

// Display prefers the friendly name, falling back to host:port.
func (s *GameServer) Display() string {
	if s.DisplayName != "" {
		return fmt.Sprintf("%s (%s)", s.DisplayName, s.HostPort())
	}
	return s.HostPort()
}

func (s *GameServer) CanEdit(user *User) bool {
	if user == nil {
		return false
	}
	return s.UserID == user.ID || user.SuperAdmin
}
