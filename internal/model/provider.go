package model

// Provider approval states.
const (
	ProviderPending  = "pending"
	ProviderApproved = "approved"
	ProviderRejected = "rejected"
)

// RoleProvider is the token role carried by approved provider accounts.
const RoleProvider = "provider"

// Provider is a care provider account. Providers register themselves and
// stay pending until an admin approves them.
type Provider struct {
	Base
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Email       string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password    string `gorm:"type:varchar(100);not null" json:"-"`
	Specialty   string `gorm:"type:varchar(100)" json:"specialty"`
	Credentials string `gorm:"type:varchar(255)" json:"credentials"`
	Bio         string `gorm:"type:text" json:"bio"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

// TableName sets the providers table name.
func (Provider) TableName() string {
	return "providers"
}
