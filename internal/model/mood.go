package model

import "time"

// MoodEntry is one mood check-in. Score is a 1-10 self rating.
type MoodEntry struct {
	Base
	UserID uint      `gorm:"not null;index" json:"user_id"`
	Score  int       `gorm:"type:tinyint(2);not null" json:"score"`
	Note   string    `gorm:"type:varchar(500)" json:"note"`
	Date   time.Time `gorm:"not null;index" json:"date"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName sets the mood entries table name.
func (MoodEntry) TableName() string {
	return "mood_entries"
}
