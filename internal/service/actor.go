package service

import "github.com/lucidpath/wellness-api/internal/model"

// Actor is the authenticated caller a handler passes into the service
// layer.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// IsProvider reports whether the actor is a provider account.
func (a Actor) IsProvider() bool {
	return a.Role == model.RoleProvider
}
