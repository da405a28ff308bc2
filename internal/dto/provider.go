package dto

// ProviderRegisterRequest is the provider signup payload. New providers
// start in the pending state.
type ProviderRegisterRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	Specialty   string `json:"specialty" binding:"omitempty,max=100"`
	Credentials string `json:"credentials" binding:"omitempty,max=255"`
	Bio         string `json:"bio" binding:"omitempty,max=2000"`
}

// ProviderLoginRequest is the provider login payload.
type ProviderLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProviderResponse is the public view of a provider.
type ProviderResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ProviderReviewRequest approves or rejects a pending provider.
type ProviderReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// ProviderUpdateRequest edits a provider's directory entry. Empty fields
// are left unchanged.
type ProviderUpdateRequest struct {
	Name        string `json:"name" binding:"omitempty,max=100"`
	Specialty   string `json:"specialty" binding:"omitempty,max=100"`
	Credentials string `json:"credentials" binding:"omitempty,max=255"`
	Bio         string `json:"bio" binding:"omitempty,max=2000"`
}

// ProviderMessageRequest is a direct message from a provider to a member.
type ProviderMessageRequest struct {
	Message string `json:"message" binding:"required,max=500"`
}

// ProviderListRequest filters provider listings.
type ProviderListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Specialty string `form:"specialty"`
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}
