package model

import "time"

// Appointment states.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment is a booking between a member and an approved provider.
// ReferenceCode is a unique human-shareable identifier.
type Appointment struct {
	Base
	ReferenceCode string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"reference_code"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	ProviderID    uint      `gorm:"not null;index" json:"provider_id"`
	ScheduledAt   time.Time `gorm:"not null;index" json:"scheduled_at"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes         string    `gorm:"type:varchar(500)" json:"notes"`

	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Provider Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

// TableName sets the appointments table name.
func (Appointment) TableName() string {
	return "appointments"
}
