package services

import (
	"context"
	"time"

	"dailyops/backend/models"
	"dailyops/backend/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserStore je in-memory zamena za repositories.UserRepo.
type fakeUserStore struct {
	managers map[string]models.Manager
	laborers map[string]models.Laborer
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		managers: make(map[string]models.Manager),
		laborers: make(map[string]models.Laborer),
	}
}

func (f *fakeUserStore) InsertManager(_ context.Context, manager *models.Manager) (string, error) {
	if manager.ID.IsZero() {
		manager.ID = primitive.NewObjectID()
	}
	f.managers[manager.ID.Hex()] = *manager
	return manager.ID.Hex(), nil
}

func (f *fakeUserStore) InsertLaborer(_ context.Context, laborer *models.Laborer) (string, error) {
	if laborer.ID.IsZero() {
		laborer.ID = primitive.NewObjectID()
	}
	f.laborers[laborer.ID.Hex()] = *laborer
	return laborer.ID.Hex(), nil
}

func (f *fakeUserStore) GetManagerByID(_ context.Context, id string) (models.Manager, error) {
	manager, ok := f.managers[id]
	if !ok {
		return models.Manager{}, repositories.ErrNotFound
	}
	return manager, nil
}

func (f *fakeUserStore) GetLaborerByID(_ context.Context, id string) (models.Laborer, error) {
	laborer, ok := f.laborers[id]
	if !ok {
		return models.Laborer{}, repositories.ErrNotFound
	}
	return laborer, nil
}

func (f *fakeUserStore) GetManagerByEmail(_ context.Context, email string) (models.Manager, error) {
	for _, manager := range f.managers {
		if manager.Email == email {
			return manager, nil
		}
	}
	return models.Manager{}, repositories.ErrNotFound
}

func (f *fakeUserStore) GetLaborerByEmail(_ context.Context, email string) (models.Laborer, error) {
	for _, laborer := range f.laborers {
		if laborer.Email == email {
			return laborer, nil
		}
	}
	return models.Laborer{}, repositories.ErrNotFound
}

func (f *fakeUserStore) GetManagerByTeamCode(_ context.Context, code string) (models.Manager, error) {
	for _, manager := range f.managers {
		if manager.TeamCode == code {
			return manager, nil
		}
	}
	return models.Manager{}, repositories.ErrNotFound
}

func (f *fakeUserStore) SetTeamCode(_ context.Context, managerID, code string) error {
	manager, ok := f.managers[managerID]
	if !ok {
		return repositories.ErrNotFound
	}
	manager.TeamCode = code
	f.managers[managerID] = manager
	return nil
}

func (f *fakeUserStore) GetLaborersByManager(_ context.Context, managerID string) ([]models.Laborer, error) {
	var laborers []models.Laborer
	for _, laborer := range f.laborers {
		if laborer.ManagerID == managerID {
			laborers = append(laborers, laborer)
		}
	}
	return laborers, nil
}

// fakeTaskStore je in-memory zamena za repositories.TaskRepo.
type fakeTaskStore struct {
	tasks map[string]models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]models.Task)}
}

func (f *fakeTaskStore) Insert(_ context.Context, task *models.Task) (string, error) {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	f.tasks[task.ID.Hex()] = *task
	return task.ID.Hex(), nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id string) (models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return models.Task{}, repositories.ErrNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) ApplyPatch(_ context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	task, ok := f.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = *patch.AssignedTo
	}
	if patch.AssignedToName != nil {
		task.AssignedToName = *patch.AssignedToName
	}
	if patch.StartTime != nil {
		task.StartTime = patch.StartTime
	}
	if patch.Duration != nil {
		task.Duration = *patch.Duration
	}
	task.UpdatedAt = updatedAt
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskStore) SetStatus(_ context.Context, id string, status models.TaskStatus, updatedAt time.Time) error {
	task, ok := f.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	task.Status = status
	task.UpdatedAt = updatedAt
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskStore) AppendComment(_ context.Context, id string, comment models.Comment, updatedAt time.Time) error {
	task, ok := f.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	task.Comments = append(task.Comments, comment)
	task.UpdatedAt = updatedAt
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) FindByManager(_ context.Context, managerID string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.ManagerID == managerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) FindByAssignee(_ context.Context, laborID string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.AssignedTo == laborID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// fakeNotificationStore je in-memory zamena za repositories.NotificationRepo.
type fakeNotificationStore struct {
	notifications []models.Notification
}

func (f *fakeNotificationStore) Insert(_ context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationStore) FindByUser(_ context.Context, userID string) ([]models.Notification, error) {
	var result []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, id string) error {
	for i, n := range f.notifications {
		if n.ID.Hex() == id && n.UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationStore) Delete(_ context.Context, userID, id string) error {
	for i, n := range f.notifications {
		if n.ID.Hex() == id && n.UserID == userID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// recordingBroadcaster beleži ko je obavešten posle mutacija.
type recordingBroadcaster struct {
	calls [][]string
}

func (b *recordingBroadcaster) NotifyTaskChange(managerID string, laborIDs ...string) {
	call := append([]string{managerID}, laborIDs...)
	b.calls = append(b.calls, call)
}

// stubTeamStore dozvoljava kontrolu kolizija timskog koda po pozivu.
type stubTeamStore struct {
	lookups      int
	collideFirst int // prvih N provera prijavljuje zauzet kod
	lookupErr    error
}

func (s *stubTeamStore) GetManagerByTeamCode(_ context.Context, code string) (models.Manager, error) {
	s.lookups++
	if s.lookupErr != nil {
		return models.Manager{}, s.lookupErr
	}
	if s.lookups <= s.collideFirst {
		return models.Manager{TeamCode: code}, nil
	}
	return models.Manager{}, repositories.ErrNotFound
}

func (s *stubTeamStore) SetTeamCode(context.Context, string, string) error { return nil }

func (s *stubTeamStore) GetLaborersByManager(context.Context, string) ([]models.Laborer, error) {
	return nil, nil
}
