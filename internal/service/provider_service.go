package service

import (
	"errors"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/auth"
	"github.com/lucidpath/wellness-api/pkg/markdown"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	providerService     *ProviderService
	providerServiceOnce sync.Once
)

var (
	// ErrProviderNotFound is returned for unknown provider ids.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrProviderNotApproved blocks logins and bookings for providers that
	// have not been approved yet.
	ErrProviderNotApproved = errors.New("provider account is not approved")
	// ErrProviderReviewed rejects repeat reviews of the same application.
	ErrProviderReviewed = errors.New("provider has already been reviewed")
)

// ProviderService handles provider registration, review and listing.
type ProviderService struct {
	db            *gorm.DB
	logger        *zap.SugaredLogger
	notifications *NotificationService
}

// NewProviderService returns the provider service singleton.
func NewProviderService() *ProviderService {
	providerServiceOnce.Do(func() {
		providerService = &ProviderService{
			db:            database.GetDB(),
			logger:        logger.GetSugaredLogger(),
			notifications: NewNotificationService(),
		}
	})
	return providerService
}

// Register creates a pending provider application.
func (s *ProviderService) Register(req *dto.ProviderRegisterRequest) (*model.Provider, error) {
	var count int64
	if err := s.db.Model(&model.Provider{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	provider := &model.Provider{
		Name:        markdown.SanitizePlain(req.Name),
		Email:       req.Email,
		Password:    hashed,
		Specialty:   markdown.SanitizePlain(req.Specialty),
		Credentials: markdown.SanitizePlain(req.Credentials),
		Bio:         markdown.SanitizePlain(req.Bio),
		Status:      model.ProviderPending,
	}
	if err := s.db.Create(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

// Login authenticates an approved provider and issues a token pair.
func (s *ProviderService) Login(req *dto.ProviderLoginRequest, ip, userAgent string) (*auth.TokenPair, *model.Provider, error) {
	var provider model.Provider
	err := s.db.Where("email = ?", req.Email).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !checkPassword(provider.Password, req.Password) {
		NewUserService().recordLogin(provider.ID, model.ActorProvider, provider.Email, ip, userAgent, false)
		return nil, nil, ErrInvalidCredentials
	}
	if provider.Status != model.ProviderApproved {
		return nil, nil, ErrProviderNotApproved
	}

	pair, err := auth.GenerateTokenPair(provider.ID, model.RoleProvider, false)
	if err != nil {
		return nil, nil, err
	}
	NewUserService().recordLogin(provider.ID, model.ActorProvider, provider.Email, ip, userAgent, true)
	return pair, &provider, nil
}

// Get loads one provider.
func (s *ProviderService) Get(id uint) (*model.Provider, error) {
	var provider model.Provider
	if err := s.db.First(&provider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &provider, nil
}

// ListApproved pages through approved providers for the public directory.
func (s *ProviderService) ListApproved(req *dto.ProviderListRequest) ([]dto.ProviderResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.Provider{}).Where("status = ?", model.ProviderApproved)
	if req.Specialty != "" {
		query = query.Where("specialty = ?", req.Specialty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var providers []model.Provider
	if err := query.Order("name ASC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&providers).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		result = append(result, toProviderResponse(&providers[i], false))
	}
	return result, total, nil
}

// ListAll pages through every provider for the admin console, optionally
// filtered by status.
func (s *ProviderService) ListAll(req *dto.ProviderListRequest) ([]dto.ProviderResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.Provider{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var providers []model.Provider
	if err := query.Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&providers).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		result = append(result, toProviderResponse(&providers[i], true))
	}
	return result, total, nil
}

// Review moves a pending provider to approved or rejected. Applications
// that already left the pending state cannot be re-reviewed.
func (s *ProviderService) Review(id uint, status string) (*model.Provider, error) {
	provider, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if provider.Status != model.ProviderPending {
		return nil, ErrProviderReviewed
	}

	if err := s.db.Model(provider).Update("status", status).Error; err != nil {
		return nil, err
	}
	provider.Status = status
	s.logger.Infof("provider %d reviewed: %s", provider.ID, status)
	return provider, nil
}

// UpdateProfile lets a provider edit their public directory entry.
func (s *ProviderService) UpdateProfile(id uint, req *dto.ProviderUpdateRequest) (*model.Provider, error) {
	provider, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = markdown.SanitizePlain(req.Name)
	}
	if req.Specialty != "" {
		updates["specialty"] = markdown.SanitizePlain(req.Specialty)
	}
	if req.Credentials != "" {
		updates["credentials"] = markdown.SanitizePlain(req.Credentials)
	}
	if req.Bio != "" {
		updates["bio"] = markdown.SanitizePlain(req.Bio)
	}
	if len(updates) == 0 {
		return provider, nil
	}

	if err := s.db.Model(provider).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Message sends a direct notification from a provider to a member.
func (s *ProviderService) Message(providerID, userID uint, text string) error {
	provider, err := s.Get(providerID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	if s.notifications != nil {
		actorID := provider.ID
		s.notifications.Notify(&model.Notification{
			RecipientID: userID,
			ActorID:     &actorID,
			ActorKind:   model.ActorProvider,
			Type:        model.NotificationProviderMessage,
			Message:     provider.Name + ": " + markdown.SanitizePlain(text),
		})
	}
	return nil
}

func toProviderResponse(p *model.Provider, admin bool) dto.ProviderResponse {
	resp := dto.ProviderResponse{
		ID:        p.ID,
		Name:      p.Name,
		Specialty: p.Specialty,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if admin {
		resp.Email = p.Email
		resp.Status = p.Status
	}
	return resp
}
