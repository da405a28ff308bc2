package model

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a member account. Admins share the table and are distinguished by
// Role.
type User struct {
	Base
	FirstName        string    `gorm:"type:varchar(50)" json:"first_name"`
	LastName         string    `gorm:"type:varchar(50)" json:"last_name"`
	Email            string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password         string    `gorm:"type:varchar(100);not null" json:"-"`
	Role             string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status           int       `gorm:"type:tinyint(2);not null;default:1" json:"status"` // 0=disabled 1=active
	LastLoginAt      time.Time `json:"last_login_at"`
	LastLoginIP      string    `gorm:"type:varchar(50)" json:"last_login_ip"`
	ResetOTP         string    `gorm:"type:varchar(100)" json:"-"`
	ResetOTPExpires  time.Time `json:"-"`
}

// TableName sets the users table name.
func (User) TableName() string {
	return "users"
}

// DisplayName is the name shown to other members in forum notifications.
// Falls back to the email when no first name is set.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.FirstName) != "" {
		return u.FirstName
	}
	return u.Email
}
