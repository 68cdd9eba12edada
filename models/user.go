// models/user.go
package models

import (
	"time"
)

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SteamID    string `gorm:"uniqueIndex;size:40" json:"steam_id"`
	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	Password   string `gorm:"not null" json:"-"`
	Name       string `gorm:"size:40" json:"name"`
	Admin      bool   `gorm:"default:false" json:"admin"`
	SuperAdmin bool   `gorm:"default:false" json:"super_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

// HasAdminFlag reports whether the user carries either admin flag.
func (u *User) HasAdminFlag() bool {
	return u.Admin || u.SuperAdmin
}

func (u *User) SteamProfileURL() string {
	return "https://steamcommunity.com/profiles/" + u.SteamID
}
