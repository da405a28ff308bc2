package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/refcode"
	"gorm.io/gorm"
)

func createTestAppointment(t *testing.T, db *gorm.DB, userID, providerID uint, status string) *model.Appointment {
	t.Helper()
	appointment := &model.Appointment{
		ReferenceCode: "LP-TEST" + status + time.Now().Format("150405.000000000"),
		UserID:        userID,
		ProviderID:    providerID,
		ScheduledAt:   time.Now().Add(48 * time.Hour),
		Status:        status,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appointment
}

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.AppointmentPending, model.AppointmentConfirmed, true},
		{model.AppointmentPending, model.AppointmentCancelled, true},
		{model.AppointmentPending, model.AppointmentCompleted, false},
		{model.AppointmentConfirmed, model.AppointmentCompleted, true},
		{model.AppointmentConfirmed, model.AppointmentCancelled, true},
		{model.AppointmentConfirmed, model.AppointmentPending, false},
		{model.AppointmentCancelled, model.AppointmentConfirmed, false},
		{model.AppointmentCancelled, model.AppointmentCancelled, false},
		{model.AppointmentCompleted, model.AppointmentCancelled, false},
	}
	for _, tt := range tests {
		if got := transitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCreateAppointment(t *testing.T) {
	if err := refcode.Init(1); err != nil {
		t.Fatalf("init refcode: %v", err)
	}
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)

	appointment, err := svc.Create(user.ID, &dto.AppointmentCreateRequest{
		ProviderID:  provider.ID,
		ScheduledAt: time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		Notes:       "first session",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if appointment.Status != model.AppointmentPending {
		t.Errorf("status = %q, want %q", appointment.Status, model.AppointmentPending)
	}
	if appointment.ReferenceCode == "" {
		t.Errorf("reference code is empty")
	}
}

func TestCreateAppointmentRejectsPastTime(t *testing.T) {
	if err := refcode.Init(1); err != nil {
		t.Fatalf("init refcode: %v", err)
	}
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)

	_, err := svc.Create(user.ID, &dto.AppointmentCreateRequest{
		ProviderID:  provider.ID,
		ScheduledAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, ErrAppointmentInPast) {
		t.Errorf("err = %v, want ErrAppointmentInPast", err)
	}
}

func TestCreateAppointmentRequiresApprovedProvider(t *testing.T) {
	if err := refcode.Init(1); err != nil {
		t.Fatalf("init refcode: %v", err)
	}
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "pending@example.com", model.ProviderPending)

	_, err := svc.Create(user.ID, &dto.AppointmentCreateRequest{
		ProviderID:  provider.ID,
		ScheduledAt: time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, ErrProviderNotApproved) {
		t.Errorf("err = %v, want ErrProviderNotApproved", err)
	}
}

func TestUpdateStatusMemberCanOnlyCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)
	appointment := createTestAppointment(t, db, user.ID, provider.ID, model.AppointmentPending)

	member := Actor{ID: user.ID, Role: model.RoleUser}
	if _, err := svc.UpdateStatus(member, appointment.ID, model.AppointmentConfirmed); !errors.Is(err, ErrInvalidStatusChange) {
		t.Errorf("member confirm err = %v, want ErrInvalidStatusChange", err)
	}

	updated, err := svc.UpdateStatus(member, appointment.ID, model.AppointmentCancelled)
	if err != nil {
		t.Fatalf("member cancel: %v", err)
	}
	if updated.Status != model.AppointmentCancelled {
		t.Errorf("status = %q, want %q", updated.Status, model.AppointmentCancelled)
	}
}

func TestUpdateStatusHidesForeignAppointments(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)
	otherProvider := createTestProvider(t, db, "dr2@example.com", model.ProviderApproved)
	appointment := createTestAppointment(t, db, owner.ID, provider.ID, model.AppointmentPending)

	_, err := svc.UpdateStatus(Actor{ID: stranger.ID, Role: model.RoleUser}, appointment.ID, model.AppointmentCancelled)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("stranger err = %v, want ErrAppointmentNotFound", err)
	}

	_, err = svc.UpdateStatus(Actor{ID: otherProvider.ID, Role: model.RoleProvider}, appointment.ID, model.AppointmentConfirmed)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("other provider err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestUpdateStatusProviderConfirmNotifiesMember(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)
	appointment := createTestAppointment(t, db, user.ID, provider.ID, model.AppointmentPending)

	updated, err := svc.UpdateStatus(Actor{ID: provider.ID, Role: model.RoleProvider}, appointment.ID, model.AppointmentConfirmed)
	if err != nil {
		t.Fatalf("provider confirm: %v", err)
	}
	if updated.Status != model.AppointmentConfirmed {
		t.Errorf("status = %q, want %q", updated.Status, model.AppointmentConfirmed)
	}

	var notifications []model.Notification
	if err := db.Where("recipient_id = ?", user.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	if notifications[0].Type != model.NotificationProviderMessage {
		t.Errorf("type = %q, want %q", notifications[0].Type, model.NotificationProviderMessage)
	}
	if notifications[0].ActorKind != model.ActorProvider {
		t.Errorf("actor_kind = %q, want %q", notifications[0].ActorKind, model.ActorProvider)
	}
}

func TestUpdateStatusCompletedRequiresConfirmed(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)
	appointment := createTestAppointment(t, db, user.ID, provider.ID, model.AppointmentPending)

	actor := Actor{ID: provider.ID, Role: model.RoleProvider}
	if _, err := svc.UpdateStatus(actor, appointment.ID, model.AppointmentCompleted); !errors.Is(err, ErrInvalidStatusChange) {
		t.Errorf("complete from pending err = %v, want ErrInvalidStatusChange", err)
	}

	if _, err := svc.UpdateStatus(actor, appointment.ID, model.AppointmentConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	updated, err := svc.UpdateStatus(actor, appointment.ID, model.AppointmentCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != model.AppointmentCompleted {
		t.Errorf("status = %q, want %q", updated.Status, model.AppointmentCompleted)
	}
}

func TestListForUserFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAppointmentService(db)
	user := createTestUser(t, db, "user@example.com")
	provider := createTestProvider(t, db, "dr@example.com", model.ProviderApproved)

	createTestAppointment(t, db, user.ID, provider.ID, model.AppointmentPending)
	createTestAppointment(t, db, user.ID, provider.ID, model.AppointmentCancelled)

	all, total, err := svc.ListForUser(user.ID, &dto.AppointmentListRequest{})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("total = %d len = %d, want 2/2", total, len(all))
	}

	pending, total, err := svc.ListForUser(user.ID, &dto.AppointmentListRequest{Status: model.AppointmentPending})
	if err != nil {
		t.Fatalf("ListForUser pending: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Errorf("pending total = %d len = %d, want 1/1", total, len(pending))
	}
}
