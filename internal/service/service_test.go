package service

import (
	"testing"
	"time"

	"github.com/lucidpath/wellness-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// newTestDB opens a fresh in-memory database with every table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// a single connection keeps the in-memory database alive
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := model.InitTables(db); err != nil {
		t.Fatalf("migrate tables: %v", err)
	}
	return db
}

func newTestNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:     db,
		logger: zap.NewNop().Sugar(),
	}
}

func newTestForumService(db *gorm.DB) *ForumService {
	return &ForumService{
		db:            db,
		logger:        zap.NewNop().Sugar(),
		notifications: newTestNotificationService(db),
	}
}

func newTestAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{
		db:            db,
		logger:        zap.NewNop().Sugar(),
		providers:     &ProviderService{db: db, logger: zap.NewNop().Sugar()},
		notifications: newTestNotificationService(db),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName: "Test",
		Email:     email,
		Password:  "irrelevant",
		Role:      model.RoleUser,
		Status:    1,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func createTestProvider(t *testing.T, db *gorm.DB, email, status string) *model.Provider {
	t.Helper()
	provider := &model.Provider{
		Name:     "Dr. Test",
		Email:    email,
		Password: "irrelevant",
		Status:   status,
	}
	if err := db.Create(provider).Error; err != nil {
		t.Fatalf("create provider %s: %v", email, err)
	}
	return provider
}

func createTestThread(t *testing.T, db *gorm.DB, authorID uint, status string) *model.ForumThread {
	t.Helper()
	thread := &model.ForumThread{
		Title:          "Sleep tips that worked for me",
		AuthorID:       authorID,
		Status:         status,
		PostsCount:     1,
		LastActivityAt: time.Now(),
	}
	if err := db.Create(thread).Error; err != nil {
		t.Fatalf("create thread: %v", err)
	}
	post := &model.ForumPost{
		ThreadID: thread.ID,
		AuthorID: authorID,
		Content:  "Opening post",
		Status:   model.PostActive,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create opening post: %v", err)
	}
	return thread
}
