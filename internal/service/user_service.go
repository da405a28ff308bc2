package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/auth"
	"github.com/lucidpath/wellness-api/pkg/markdown"
	"github.com/lucidpath/wellness-api/pkg/region"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	userService     *UserService
	userServiceOnce sync.Once
)

// Auth errors shared by user and provider login flows.
var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrCaptchaInvalid     = errors.New("captcha verification failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetCodeInvalid   = errors.New("reset code is invalid or expired")
)

const resetOTPLifetime = 15 * time.Minute

// UserService handles member accounts and authentication.
type UserService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewUserService returns the user service singleton.
func NewUserService() *UserService {
	userServiceOnce.Do(func() {
		userService = &UserService{
			db:     database.GetDB(),
			logger: logger.GetSugaredLogger(),
		}
	})
	return userService
}

// Register creates a member account.
func (s *UserService) Register(req *dto.RegisterRequest) (*model.User, error) {
	if !NewCaptchaService().Verify(req.CaptchaID, req.Captcha) {
		return nil, ErrCaptchaInvalid
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: markdown.SanitizePlain(req.FirstName),
		LastName:  markdown.SanitizePlain(req.LastName),
		Email:     req.Email,
		Password:  hashed,
		Role:      model.RoleUser,
		Status:    1,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair. Every attempt is
// recorded in the login log with its resolved region.
func (s *UserService) Login(req *dto.LoginRequest, ip, userAgent string) (*dto.LoginResponse, error) {
	var user model.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLogin(0, model.ActorUser, req.Email, ip, userAgent, false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(user.Password, req.Password) {
		s.recordLogin(user.ID, model.ActorUser, user.Email, ip, userAgent, false)
		return nil, ErrInvalidCredentials
	}
	if user.Status == 0 {
		return nil, ErrAccountDisabled
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.Role, req.Remember)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": ip,
	}).Error; err != nil {
		s.logger.Warnf("update last login failed: %v", err)
	}
	s.recordLogin(user.ID, model.ActorUser, user.Email, ip, userAgent, true)

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         toUserResponse(&user),
	}, nil
}

// recordLogin writes a login log entry. Region lookup runs off the request
// path.
func (s *UserService) recordLogin(userID uint, kind, email, ip, userAgent string, success bool) {
	go func() {
		entry := &model.LoginLog{
			UserID:    userID,
			ActorKind: kind,
			Email:     email,
			IP:        ip,
			Region:    region.Lookup(ip),
			UserAgent: userAgent,
			Success:   success,
		}
		if err := s.db.Create(entry).Error; err != nil {
			s.logger.Warnf("write login log failed: %v", err)
		}
	}()
}

// Logout revokes both tokens.
func (s *UserService) Logout(accessToken, refreshToken string) {
	if accessToken != "" {
		if err := auth.RevokeToken(accessToken); err != nil {
			s.logger.Warnf("revoke access token failed: %v", err)
		}
	}
	if err := auth.RevokeToken(refreshToken); err != nil {
		s.logger.Warnf("revoke refresh token failed: %v", err)
	}
}

// Refresh rotates a refresh token into a new pair.
func (s *UserService) Refresh(refreshToken string) (*auth.TokenPair, error) {
	return auth.RefreshAccessToken(refreshToken)
}

// GetProfile loads an account by id.
func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the caller's name fields.
func (s *UserService) UpdateProfile(userID uint, req *dto.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"first_name": markdown.SanitizePlain(req.FirstName),
		"last_name":  markdown.SanitizePlain(req.LastName),
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

// ChangePassword verifies the old password and sets a new one.
func (s *UserService) ChangePassword(userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.Password, req.OldPassword) {
		return ErrInvalidCredentials
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password", hashed).Error
}

// ForgotPassword stores a one-time reset code for the account. The response
// is identical whether or not the email exists, so addresses cannot be
// probed. Mail delivery is handled by an external service; here the code is
// only persisted and logged.
func (s *UserService) ForgotPassword(email string) error {
	var user model.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"reset_otp":         code,
		"reset_otp_expires": time.Now().Add(resetOTPLifetime),
	}).Error; err != nil {
		return err
	}

	s.logger.Infof("password reset code issued for user %d", user.ID)
	return nil
}

// ResetPassword completes a reset with the emailed code.
func (s *UserService) ResetPassword(req *dto.ResetPasswordRequest) error {
	var user model.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetCodeInvalid
		}
		return err
	}

	if user.ResetOTP == "" || user.ResetOTP != req.Code || time.Now().After(user.ResetOTPExpires) {
		return ErrResetCodeInvalid
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Updates(map[string]interface{}{
		"password":          hashed,
		"reset_otp":         "",
		"reset_otp_expires": time.Time{},
	}).Error
}

// List pages through member accounts for the admin console.
func (s *UserService) List(req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.User{})
	if req.Keyword != "" {
		like := "%" + req.Keyword + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := query.Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func hashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hashed, pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pwd)) == nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
