package dto

// MoodCreateRequest records one mood check-in.
type MoodCreateRequest struct {
	Score int    `json:"score" binding:"required,min=1,max=10"`
	Note  string `json:"note" binding:"omitempty,max=500"`
	Date  string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// MoodListRequest filters the caller's mood history.
type MoodListRequest struct {
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
	From  string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To    string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// MoodResponse is one mood entry.
type MoodResponse struct {
	ID        uint   `json:"id"`
	Score     int    `json:"score"`
	Note      string `json:"note"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
}

// JournalCreateRequest creates a journal entry from markdown.
type JournalCreateRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1"`
}

// JournalUpdateRequest edits a journal entry.
type JournalUpdateRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1"`
}

// JournalResponse is one journal entry.
type JournalResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AppointmentCreateRequest books an appointment with a provider.
type AppointmentCreateRequest struct {
	ProviderID  uint   `json:"provider_id" binding:"required"`
	ScheduledAt string `json:"scheduled_at" binding:"required"`
	Notes       string `json:"notes" binding:"omitempty,max=500"`
}

// AppointmentStatusRequest moves an appointment to a new state.
type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed cancelled completed"`
}

// AppointmentResponse is one appointment.
type AppointmentResponse struct {
	ID            uint              `json:"id"`
	ReferenceCode string            `json:"reference_code"`
	ScheduledAt   string            `json:"scheduled_at"`
	Status        string            `json:"status"`
	Notes         string            `json:"notes"`
	Provider      *ProviderResponse `json:"provider,omitempty"`
	User          *UserResponse     `json:"user,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// AppointmentListRequest filters appointment listings.
type AppointmentListRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
}
