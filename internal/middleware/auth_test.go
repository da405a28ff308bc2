package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/auth"
)

// setTestConfig installs a minimal configuration so token issuance works.
func setTestConfig(t *testing.T) {
	t.Helper()
	old := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{
			SecretKey:            "test-secret",
			AccessExpireSeconds:  900,
			RefreshExpireSeconds: 7 * 24 * 3600,
			Issuer:               "test",
		},
	}
	t.Cleanup(func() { config.GlobalConfig = old })
}

func issueAccessToken(t *testing.T, role string) string {
	t.Helper()
	pair, err := auth.GenerateTokenPair(1, role, false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return pair.AccessToken
}

func guardedRouter(guard gin.HandlerFunc, handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded", guard, func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"done": true})
	})
	return r
}

func TestAdminAuthBlocksNonAdminBeforeHandler(t *testing.T) {
	setTestConfig(t)

	handlerRan := false
	r := guardedRouter(AdminAuth(), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, model.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Fatal("guarded handler ran for a non-admin token")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAdminAuthAllowsAdmin(t *testing.T) {
	setTestConfig(t)

	handlerRan := false
	r := guardedRouter(AdminAuth(), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, model.RoleAdmin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !handlerRan {
		t.Fatal("guarded handler did not run for an admin token")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	setTestConfig(t)

	handlerRan := false
	r := guardedRouter(AdminAuth(), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Fatal("guarded handler ran without a token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProviderAuthBlocksUserTokenBeforeHandler(t *testing.T) {
	setTestConfig(t)

	handlerRan := false
	r := guardedRouter(ProviderAuth(), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, model.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if handlerRan {
		t.Fatal("guarded handler ran for a non-provider token")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}
