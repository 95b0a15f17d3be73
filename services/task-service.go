package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"dailyops/backend/models"
	"dailyops/backend/repositories"

	"github.com/google/uuid"
)

// TaskStore su operacije nad kolekcijom zadataka.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) (string, error)
	GetByID(ctx context.Context, id string) (models.Task, error)
	ApplyPatch(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error
	SetStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error
	AppendComment(ctx context.Context, id string, comment models.Comment, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	FindByManager(ctx context.Context, managerID string) ([]models.Task, error)
	FindByAssignee(ctx context.Context, laborID string) ([]models.Task, error)
}

// AssigneeStore razrešava radnika prilikom dodele zadatka.
type AssigneeStore interface {
	GetLaborerByID(ctx context.Context, id string) (models.Laborer, error)
}

// TaskBroadcaster prima obaveštenje posle svake uspešne mutacije;
// laborIDs sadrži i starog i novog izvršioca kod ponovne dodele.
type TaskBroadcaster interface {
	NotifyTaskChange(managerID string, laborIDs ...string)
}

// TaskNotifier je best-effort kanal ka korisničkim notifikacijama i webhook-u.
type TaskNotifier interface {
	TaskAssigned(ctx context.Context, task models.Task)
	TaskStatusChanged(ctx context.Context, task models.Task, previous models.TaskStatus)
}

// CreateTaskInput su polja koja menadžer šalje pri kreiranju zadatka.
type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	AssignedTo  string              `json:"assignedTo"`
	StartTime   *time.Time          `json:"startTime,omitempty"`
	Duration    int                 `json:"duration,omitempty"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type TaskService struct {
	store    TaskStore
	users    AssigneeStore
	hub      TaskBroadcaster
	notifier TaskNotifier

	Now func() time.Time
}

func NewTaskService(store TaskStore, users AssigneeStore) *TaskService {
	return &TaskService{
		store: store,
		users: users,
		Now:   time.Now,
	}
}

// SetBroadcaster i SetNotifier se vezuju u main-u; servis radi i bez njih.
func (s *TaskService) SetBroadcaster(hub TaskBroadcaster) { s.hub = hub }
func (s *TaskService) SetNotifier(notifier TaskNotifier)  { s.notifier = notifier }

func (s *TaskService) notifyChange(managerID string, laborIDs ...string) {
	if s.hub != nil {
		s.hub.NotifyTaskChange(managerID, laborIDs...)
	}
}

// resolveAssignee proverava da radnik postoji i da pripada timu menadžera.
func (s *TaskService) resolveAssignee(ctx context.Context, managerID, laborID string) (models.Laborer, error) {
	laborer, err := s.users.GetLaborerByID(ctx, laborID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Laborer{}, fmt.Errorf("%w: assignee does not exist", ErrValidation)
	}
	if err != nil {
		return models.Laborer{}, err
	}
	if laborer.ManagerID != managerID {
		return models.Laborer{}, fmt.Errorf("%w: assignee is not on your team", ErrValidation)
	}
	return laborer, nil
}

// CreateTask kreira zadatak u ime menadžera iz sesije; status je uvek pending.
func (s *TaskService) CreateTask(ctx context.Context, session models.Session, input CreateTaskInput) (models.Task, error) {
	if session.Role != models.RoleManager {
		return models.Task{}, ErrForbidden
	}
	if input.Title == "" || input.Description == "" {
		return models.Task{}, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if input.AssignedTo == "" {
		return models.Task{}, fmt.Errorf("%w: assignedTo is required", ErrValidation)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}

	laborer, err := s.resolveAssignee(ctx, session.UserID, input.AssignedTo)
	if err != nil {
		return models.Task{}, err
	}

	now := s.Now()
	task := models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		Status:         models.StatusPending,
		ManagerID:      session.UserID,
		AssignedTo:     input.AssignedTo,
		AssignedToName: laborer.Name,
		StartTime:      input.StartTime,
		Duration:       input.Duration,
		Comments:       []models.Comment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.store.Insert(ctx, &task); err != nil {
		return models.Task{}, err
	}

	s.notifyChange(task.ManagerID, task.AssignedTo)
	if s.notifier != nil {
		s.notifier.TaskAssigned(ctx, task)
	}
	return task, nil
}

// GetTasks vraća skup zadataka za ulogu iz sesije, sortiran po createdAt opadajuće.
func (s *TaskService) GetTasks(ctx context.Context, session models.Session) ([]models.Task, error) {
	var tasks []models.Task
	var err error

	switch session.Role {
	case models.RoleManager:
		tasks, err = s.store.FindByManager(ctx, session.UserID)
	case models.RoleLabor:
		tasks, err = s.store.FindByAssignee(ctx, session.UserID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	sortTasks(tasks)
	return tasks, nil
}

// GetTask vraća jedan zadatak; vide ga samo vlasnik i trenutni izvršilac.
func (s *TaskService) GetTask(ctx context.Context, session models.Session, id string) (models.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if task.ManagerID != session.UserID && task.AssignedTo != session.UserID {
		return models.Task{}, ErrForbidden
	}
	return task, nil
}

// UpdateTask primenjuje patch; dozvoljeno samo vlasniku zadatka.
func (s *TaskService) UpdateTask(ctx context.Context, session models.Session, id string, patch models.TaskPatch) (models.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if task.ManagerID != session.UserID {
		return models.Task{}, ErrForbidden
	}

	if patch.Title != nil && *patch.Title == "" {
		return models.Task{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if patch.Description != nil && *patch.Description == "" {
		return models.Task{}, fmt.Errorf("%w: description must not be empty", ErrValidation)
	}
	if patch.Priority != nil && !models.ValidPriority(*patch.Priority) {
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
	}

	previousAssignee := task.AssignedTo
	reassigned := false
	if patch.AssignedTo != nil && *patch.AssignedTo != task.AssignedTo {
		laborer, err := s.resolveAssignee(ctx, session.UserID, *patch.AssignedTo)
		if err != nil {
			return models.Task{}, err
		}
		name := laborer.Name
		patch.AssignedToName = &name
		reassigned = true
	}

	if err := s.store.ApplyPatch(ctx, id, patch, s.Now()); err != nil {
		return models.Task{}, err
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	// Stari izvršilac dobija snapshot bez zadatka, novi sa njim.
	s.notifyChange(updated.ManagerID, previousAssignee, updated.AssignedTo)
	if reassigned && s.notifier != nil {
		s.notifier.TaskAssigned(ctx, updated)
	}
	return updated, nil
}

// UpdateTaskStatus menja status. Trenutni izvršilac sme da postavi bilo koji
// validan status; vlasnik sme jedino da ponovo otvori završen zadatak.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, session models.Session, id string, status models.TaskStatus) (models.Task, error) {
	if !models.ValidStatus(status) {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	switch {
	case session.UserID == task.AssignedTo:
		// dozvoljeno
	case session.UserID == task.ManagerID:
		if task.Status != models.StatusCompleted || status != models.StatusPending {
			return models.Task{}, ErrForbidden
		}
	default:
		return models.Task{}, ErrForbidden
	}

	previous := task.Status
	if err := s.store.SetStatus(ctx, id, status, s.Now()); err != nil {
		return models.Task{}, err
	}

	task.Status = status
	s.notifyChange(task.ManagerID, task.AssignedTo)
	if s.notifier != nil {
		s.notifier.TaskStatusChanged(ctx, task, previous)
	}
	return task, nil
}

// AddComment dodaje komentar; mogu vlasnik i trenutni izvršilac. Niz je
// append-only, postojeći komentari se ne menjaju niti brišu.
func (s *TaskService) AddComment(ctx context.Context, session models.Session, id, text, audioURL string) (models.Comment, error) {
	if text == "" && audioURL == "" {
		return models.Comment{}, fmt.Errorf("%w: comment text or audio reference is required", ErrValidation)
	}

	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, err
	}
	if task.ManagerID != session.UserID && task.AssignedTo != session.UserID {
		return models.Comment{}, ErrForbidden
	}

	comment := models.Comment{
		ID:         uuid.New().String(),
		AuthorID:   session.UserID,
		AuthorName: session.Name,
		Text:       text,
		AudioURL:   audioURL,
		CreatedAt:  s.Now(),
	}

	if err := s.store.AppendComment(ctx, id, comment, comment.CreatedAt); err != nil {
		return models.Comment{}, err
	}

	s.notifyChange(task.ManagerID, task.AssignedTo)
	return comment, nil
}

// DeleteTask briše zadatak; dozvoljeno samo vlasniku.
func (s *TaskService) DeleteTask(ctx context.Context, session models.Session, id string) error {
	task, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if task.ManagerID != session.UserID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.notifyChange(task.ManagerID, task.AssignedTo)
	return nil
}

// Stats broji zadatke po statusu za ulogu iz sesije.
func (s *TaskService) Stats(ctx context.Context, session models.Session) (TaskStats, error) {
	tasks, err := s.GetTasks(ctx, session)
	if err != nil {
		return TaskStats{}, err
	}

	stats := TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// sortTasks sortira po createdAt opadajuće na klijentskoj strani upita.
func sortTasks(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
