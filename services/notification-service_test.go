package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailyops/backend/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newNotificationEnv(webhookURL string) (*NotificationService, *fakeNotificationStore) {
	store := &fakeNotificationStore{}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "TestCB"})
	service := NewNotificationService(store, &http.Client{Timeout: time.Second}, breaker, webhookURL)
	service.Now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	return service, store
}

func sampleTask() models.Task {
	return models.Task{
		ID:         primitive.NewObjectID(),
		Title:      "Popravka ograde",
		Status:     models.StatusInProgress,
		ManagerID:  "manager-1",
		AssignedTo: "labor-1",
	}
}

func TestTaskAssignedStoresNotification(t *testing.T) {
	service, store := newNotificationEnv("")
	task := sampleTask()

	service.TaskAssigned(context.Background(), task)

	notifications, err := store.FindByUser(context.Background(), "labor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].TaskID != task.ID.Hex() {
		t.Fatalf("unexpected task reference %q", notifications[0].TaskID)
	}
	if !strings.Contains(notifications[0].Message, task.Title) {
		t.Fatalf("expected message to mention the task, got %q", notifications[0].Message)
	}
	if notifications[0].IsRead {
		t.Fatal("new notification must start unread")
	}
}

func TestTaskStatusChangedNotifiesManager(t *testing.T) {
	service, store := newNotificationEnv("")
	task := sampleTask()

	service.TaskStatusChanged(context.Background(), task, models.StatusPending)

	notifications, err := store.FindByUser(context.Background(), "manager-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	message := notifications[0].Message
	if !strings.Contains(message, string(models.StatusPending)) || !strings.Contains(message, string(models.StatusInProgress)) {
		t.Fatalf("expected message with both statuses, got %q", message)
	}
}

func TestWebhookDelivery(t *testing.T) {
	received := make(chan webhookEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event webhookEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("failed to decode webhook payload: %v", err)
		}
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service, _ := newNotificationEnv(server.URL)
	task := sampleTask()

	service.TaskAssigned(context.Background(), task)

	select {
	case event := <-received:
		if event.Event != "task.assigned" {
			t.Fatalf("expected event task.assigned, got %q", event.Event)
		}
		if event.Task.Title != task.Title {
			t.Fatalf("unexpected task in payload: %+v", event.Task)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestWebhookFailureIsBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service, store := newNotificationEnv(server.URL)
	task := sampleTask()

	// pad webhook-a ne sme da spreči upis notifikacije
	service.TaskAssigned(context.Background(), task)

	notifications, err := store.FindByUser(context.Background(), "labor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected notification despite webhook failure, got %d", len(notifications))
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	service, store := newNotificationEnv("")
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		n := models.Notification{UserID: "labor-1", Message: "m", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Insert(context.Background(), &n); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	session := models.Session{UserID: "labor-1", Role: models.RoleLabor}
	notifications, err := service.ListForUser(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifications))
	}
	for i := 0; i < len(notifications)-1; i++ {
		if notifications[i].CreatedAt.Before(notifications[i+1].CreatedAt) {
			t.Fatalf("notifications not sorted newest first at index %d", i)
		}
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	service, store := newNotificationEnv("")

	n := models.Notification{UserID: "labor-1", Message: "m", CreatedAt: time.Now()}
	if err := store.Insert(context.Background(), &n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := models.Session{UserID: "labor-2", Role: models.RoleLabor}
	if err := service.MarkRead(context.Background(), other, n.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}

	owner := models.Session{UserID: "labor-1", Role: models.RoleLabor}
	if err := service.MarkRead(context.Background(), owner, n.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notifications, _ := store.FindByUser(context.Background(), "labor-1")
	if !notifications[0].IsRead {
		t.Fatal("expected notification marked as read")
	}

	if err := service.Delete(context.Background(), other, n.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := service.Delete(context.Background(), owner, n.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
