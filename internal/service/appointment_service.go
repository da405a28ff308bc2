package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/markdown"
	"github.com/lucidpath/wellness-api/pkg/refcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	appointmentService     *AppointmentService
	appointmentServiceOnce sync.Once
)

var (
	// ErrAppointmentNotFound is returned for unknown or foreign ids.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrAppointmentInPast rejects bookings for past times.
	ErrAppointmentInPast = errors.New("appointment time must be in the future")
	// ErrInvalidStatusChange rejects transitions outside the state machine.
	ErrInvalidStatusChange = errors.New("invalid appointment status change")
)

// AppointmentService handles bookings between members and approved
// providers.
type AppointmentService struct {
	db            *gorm.DB
	logger        *zap.SugaredLogger
	providers     *ProviderService
	notifications *NotificationService
}

// NewAppointmentService returns the appointment service singleton.
func NewAppointmentService() *AppointmentService {
	appointmentServiceOnce.Do(func() {
		appointmentService = &AppointmentService{
			db:            database.GetDB(),
			logger:        logger.GetSugaredLogger(),
			providers:     NewProviderService(),
			notifications: NewNotificationService(),
		}
	})
	return appointmentService
}

// Create books an appointment with an approved provider.
func (s *AppointmentService) Create(userID uint, req *dto.AppointmentCreateRequest) (*model.Appointment, error) {
	provider, err := s.providers.Get(req.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.Status != model.ProviderApproved {
		return nil, ErrProviderNotApproved
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, fmt.Errorf("parse scheduled_at: %w", err)
	}
	if scheduledAt.Before(time.Now()) {
		return nil, ErrAppointmentInPast
	}

	code, err := refcode.Generate()
	if err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		ReferenceCode: code,
		UserID:        userID,
		ProviderID:    req.ProviderID,
		ScheduledAt:   scheduledAt,
		Status:        model.AppointmentPending,
		Notes:         markdown.SanitizePlain(req.Notes),
	}
	if err := s.db.Create(appointment).Error; err != nil {
		return nil, err
	}
	appointment.Provider = *provider
	return appointment, nil
}

// ListForUser pages through a member's appointments.
func (s *AppointmentService) ListForUser(userID uint, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	return s.list("user_id", userID, req, true)
}

// ListForProvider pages through a provider's appointments.
func (s *AppointmentService) ListForProvider(providerID uint, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	return s.list("provider_id", providerID, req, false)
}

func (s *AppointmentService) list(column string, id uint, req *dto.AppointmentListRequest, withProvider bool) ([]dto.AppointmentResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.Appointment{}).Where(column+" = ?", id)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []model.Appointment
	if err := query.Preload("User").Preload("Provider").
		Order("scheduled_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		result = append(result, toAppointmentResponse(&appointments[i], withProvider))
	}
	return result, total, nil
}

// allowed appointment transitions
var appointmentTransitions = map[string][]string{
	model.AppointmentPending:   {model.AppointmentConfirmed, model.AppointmentCancelled},
	model.AppointmentConfirmed: {model.AppointmentCompleted, model.AppointmentCancelled},
}

// UpdateStatus moves an appointment through its state machine. Members may
// only cancel their own bookings; providers manage the rest. Provider
// driven changes notify the member.
func (s *AppointmentService) UpdateStatus(actor Actor, id uint, status string) (*model.Appointment, error) {
	var appointment model.Appointment
	err := s.db.Preload("Provider").First(&appointment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	switch {
	case actor.IsProvider():
		if appointment.ProviderID != actor.ID {
			return nil, ErrAppointmentNotFound
		}
	case actor.IsAdmin():
		// admins may manage any appointment
	default:
		if appointment.UserID != actor.ID {
			return nil, ErrAppointmentNotFound
		}
		if status != model.AppointmentCancelled {
			return nil, ErrInvalidStatusChange
		}
	}

	if !transitionAllowed(appointment.Status, status) {
		return nil, ErrInvalidStatusChange
	}

	if err := s.db.Model(&appointment).Update("status", status).Error; err != nil {
		return nil, err
	}
	appointment.Status = status

	if actor.IsProvider() && s.notifications != nil {
		providerID := appointment.ProviderID
		refID := appointment.ID
		s.notifications.Notify(&model.Notification{
			RecipientID: appointment.UserID,
			ActorID:     &providerID,
			ActorKind:   model.ActorProvider,
			Type:        model.NotificationProviderMessage,
			ReferenceID: &refID,
			Message:     fmt.Sprintf("%s marked your appointment %s as %s", appointment.Provider.Name, appointment.ReferenceCode, status),
		})
	}

	return &appointment, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range appointmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func toAppointmentResponse(a *model.Appointment, withProvider bool) dto.AppointmentResponse {
	resp := dto.AppointmentResponse{
		ID:            a.ID,
		ReferenceCode: a.ReferenceCode,
		ScheduledAt:   a.ScheduledAt.Format(time.RFC3339),
		Status:        a.Status,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
	if withProvider && a.Provider.ID != 0 {
		p := toProviderResponse(&a.Provider, false)
		resp.Provider = &p
	}
	if !withProvider && a.User.ID != 0 {
		u := toUserResponse(&a.User)
		resp.User = &u
	}
	return resp
}
