package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"dailyops/backend/logging"
	"dailyops/backend/models"
	"dailyops/backend/repositories"

	"github.com/sony/gobreaker"
)

// NotificationStore su operacije nad kolekcijom notifikacija.
type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	FindByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// NotificationService upisuje notifikacije po korisniku i prosleđuje događaje
// na eksterni webhook. Obe strane su best effort: greška se loguje, mutacija
// koja je događaj izazvala nikad ne pada zbog notifikacije.
type NotificationService struct {
	store      NotificationStore
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	webhookURL string

	Now func() time.Time
}

func NewNotificationService(store NotificationStore, httpClient *http.Client, breaker *gobreaker.CircuitBreaker, webhookURL string) *NotificationService {
	return &NotificationService{
		store:      store,
		httpClient: httpClient,
		breaker:    breaker,
		webhookURL: webhookURL,
		Now:        time.Now,
	}
}

// TaskAssigned obaveštava radnika kome je zadatak dodeljen.
func (s *NotificationService) TaskAssigned(ctx context.Context, task models.Task) {
	notification := models.Notification{
		UserID:    task.AssignedTo,
		TaskID:    task.ID.Hex(),
		Message:   fmt.Sprintf("New task assigned: %s", task.Title),
		CreatedAt: s.Now(),
	}
	if err := s.store.Insert(ctx, &notification); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: Failed to store assignment notification: %v", err)
	}

	s.postWebhook("task.assigned", task)
}

// TaskStatusChanged obaveštava vlasnika zadatka o promeni statusa.
func (s *NotificationService) TaskStatusChanged(ctx context.Context, task models.Task, previous models.TaskStatus) {
	notification := models.Notification{
		UserID:    task.ManagerID,
		TaskID:    task.ID.Hex(),
		Message:   fmt.Sprintf("Task '%s' moved from %s to %s", task.Title, previous, task.Status),
		CreatedAt: s.Now(),
	}
	if err := s.store.Insert(ctx, &notification); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: Failed to store status notification: %v", err)
	}

	s.postWebhook("task.status_changed", task)
}

// ListForUser vraća notifikacije sesije, najnovije prve.
func (s *NotificationService) ListForUser(ctx context.Context, session models.Session) ([]models.Notification, error) {
	notifications, err := s.store.FindByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, session models.Session, id string) error {
	err := s.store.MarkRead(ctx, session.UserID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *NotificationService) Delete(ctx context.Context, session models.Session, id string) error {
	err := s.store.Delete(ctx, session.UserID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

type webhookEvent struct {
	Event string      `json:"event"`
	Task  models.Task `json:"task"`
	At    time.Time   `json:"at"`
}

// postWebhook šalje događaj kroz circuit breaker; kada je breaker otvoren,
// događaji se preskaču dok se eksterni servis ne oporavi.
func (s *NotificationService) postWebhook(event string, task models.Task) {
	if s.webhookURL == "" {
		return
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		payload, err := json.Marshal(webhookEvent{Event: event, Task: task, At: s.Now()})
		if err != nil {
			return nil, err
		}

		resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: WEBHOOK_POST_FAILED, Description: Failed to deliver %s event: %v", event, err)
	}
}
