package service

import (
	"sync"

	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/mojocn/base64Captcha"
)

var (
	captchaService     *CaptchaService
	captchaServiceOnce sync.Once
)

// CaptchaService issues and verifies the registration captcha.
type CaptchaService struct {
	store base64Captcha.Store
}

// NewCaptchaService returns the captcha service singleton.
func NewCaptchaService() *CaptchaService {
	captchaServiceOnce.Do(func() {
		captchaService = &CaptchaService{
			store: base64Captcha.DefaultMemStore,
		}
	})
	return captchaService
}

// Generate creates a digit captcha and returns its id and image.
func (s *CaptchaService) Generate() (*dto.CaptchaResponse, error) {
	cfg := config.GlobalConfig.Captcha
	height, width, length := cfg.Height, cfg.Width, cfg.Length
	if height == 0 {
		height = 80
	}
	if width == 0 {
		width = 240
	}
	if length == 0 {
		length = 6
	}

	driver := base64Captcha.NewDriverDigit(height, width, length, 0.7, 70)
	captcha := base64Captcha.NewCaptcha(driver, s.store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}

	return &dto.CaptchaResponse{
		CaptchaID: id,
		Image:     b64s,
	}, nil
}

// Verify checks a captcha answer. Verification consumes the challenge.
func (s *CaptchaService) Verify(id, answer string) bool {
	if config.GlobalConfig == nil || !config.GlobalConfig.Captcha.Enabled {
		return true
	}
	if id == "" || answer == "" {
		return false
	}
	return s.store.Verify(id, answer, true)
}
