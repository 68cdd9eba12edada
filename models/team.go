// models/team.go
package models

import (
	"sort"
	"time"
)

// MaxPlayers is the roster cap per team.
const MaxPlayers = 7

type Team struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     uint   `json:"user_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null;size:40"`
	Tag        string `json:"tag" gorm:"size:40"`
	Flag       string `json:"flag" gorm:"size:4"`
	Logo       string `json:"logo" gorm:"size:10"`
	PublicTeam bool   `json:"public_team" gorm:"default:false;index"`

	Auths []TeamAuth `json:"auths,omitempty" gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamAuth is one roster slot: a steam64 auth plus an optional preferred
// display name. Slots keep their creation order via Slot.
type TeamAuth struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	TeamID uint   `json:"team_id" gorm:"not null;index"`
	Slot   int    `json:"slot" gorm:"not null"`
	Auth   string `json:"auth" gorm:"size:17;not null"`
	Name   string `json:"name" gorm:"size:40"`
}

func (TeamAuth) TableName() string {
	return "team_auths"
}

// CanEdit mirrors ownership rules: the owner and super admins may edit.
func (t *Team) CanEdit(user *User) bool {
	if user == nil {
		return false
	}
	return t.UserID == user.ID || user.SuperAdmin
}

// SortedAuths returns the roster in slot order, skipping empty auth fields.
func (t *Team) SortedAuths() []TeamAuth {
	auths := make([]TeamAuth, 0, len(t.Auths))
	for _, a := range t.Auths {
		if a.Auth != "" {
			auths = append(auths, a)
		}
	}
	sort.Slice(auths, func(i, j int) bool { return auths[i].Slot < auths[j].Slot })
	return auths
}

// HasPlayer reports whether the given steam64 is on the roster.
func (t *Team) HasPlayer(auth string) bool {
	for _, a := range t.Auths {
		if a.Auth == auth {
			return true
		}
	}
	return false
}
