// models/season.go
package models

import "time"

type Season struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Name      string     `json:"name" gorm:"size:60;not null"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // nil = open-ended season

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Season) TableName() string {
	return "seasons"
}

func (s *Season) CanEdit(user *User) bool {
	if user == nil {
		return false
	}
	return s.UserID == user.ID || user.SuperAdmin
}

// Active reports whether the season is still running at the given time.
func (s *Season) Active(now time.Time) bool {
	if now.Before(s.StartDate) {
		return false
	}
	return s.EndDate == nil || now.Before(*s.EndDate)
}
