package model

// LoginLog records each successful or failed login attempt.
type LoginLog struct {
	Base
	UserID    uint   `gorm:"index" json:"user_id"`
	ActorKind string `gorm:"type:varchar(20);not null;default:'user'" json:"actor_kind"`
	Email     string `gorm:"type:varchar(100)" json:"email"`
	IP        string `gorm:"type:varchar(50)" json:"ip"`
	Region    string `gorm:"type:varchar(100)" json:"region"`
	UserAgent string `gorm:"type:varchar(255)" json:"user_agent"`
	Success   bool   `gorm:"not null;default:false" json:"success"`
}

// TableName sets the login logs table name.
func (LoginLog) TableName() string {
	return "login_logs"
}
