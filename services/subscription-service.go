package services

import (
	"context"
	"sync"

	"dailyops/backend/logging"
	"dailyops/backend/models"
)

// TaskFeed su upiti koje hub koristi da sastavi snapshot za pretplatnika.
type TaskFeed interface {
	FindByManager(ctx context.Context, managerID string) ([]models.Task, error)
	FindByAssignee(ctx context.Context, laborID string) ([]models.Task, error)
}

// TaskSubscriber je jedna pretplata; na C stiže ceo trenutni skup zadataka,
// ne inkrementalne razlike.
type TaskSubscriber struct {
	Session models.Session
	C       chan []models.Task
}

// TaskHub drži po jednu pretplatu za svaku prijavljenu sesiju i posle svake
// mutacije ponovo izvršava upit i šalje kompletan snapshot pogođenim
// pretplatnicima.
type TaskHub struct {
	feed TaskFeed

	mu   sync.Mutex
	subs map[*TaskSubscriber]struct{}
}

func NewTaskHub(feed TaskFeed) *TaskHub {
	return &TaskHub{
		feed: feed,
		subs: make(map[*TaskSubscriber]struct{}),
	}
}

// Subscribe registruje sesiju i odmah isporučuje početni snapshot.
func (h *TaskHub) Subscribe(ctx context.Context, session models.Session) *TaskSubscriber {
	sub := &TaskSubscriber{
		Session: session,
		C:       make(chan []models.Task, 1),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	if tasks, err := h.snapshot(ctx, session); err == nil {
		trySend(sub, tasks)
	} else {
		logging.Logger.Errorf("Event ID: SUBSCRIPTION_SNAPSHOT_FAILED, Description: Failed to load initial snapshot for %s: %v", session.UserID, err)
	}
	h.mu.Unlock()

	return sub
}

// Unsubscribe uklanja pretplatu i zatvara kanal.
func (h *TaskHub) Unsubscribe(sub *TaskSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.C)
	}
}

// NotifyTaskChange isporučuje svež snapshot svakom pretplatniku koga izmena
// pogađa: vlasniku i navedenim izvršiocima.
func (h *TaskHub) NotifyTaskChange(managerID string, laborIDs ...string) {
	// Mutacioni kontekst može već biti otkazan kada snapshot krene.
	ctx := context.Background()

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if !h.affected(sub.Session, managerID, laborIDs) {
			continue
		}
		tasks, err := h.snapshot(ctx, sub.Session)
		if err != nil {
			logging.Logger.Errorf("Event ID: SUBSCRIPTION_SNAPSHOT_FAILED, Description: Failed to refresh snapshot for %s: %v", sub.Session.UserID, err)
			continue
		}
		trySend(sub, tasks)
	}
}

func (h *TaskHub) affected(session models.Session, managerID string, laborIDs []string) bool {
	if session.Role == models.RoleManager {
		return session.UserID == managerID
	}
	for _, id := range laborIDs {
		if id == session.UserID {
			return true
		}
	}
	return false
}

func (h *TaskHub) snapshot(ctx context.Context, session models.Session) ([]models.Task, error) {
	var tasks []models.Task
	var err error

	if session.Role == models.RoleManager {
		tasks, err = h.feed.FindByManager(ctx, session.UserID)
	} else {
		tasks, err = h.feed.FindByAssignee(ctx, session.UserID)
	}
	if err != nil {
		return nil, err
	}

	sortTasks(tasks)
	return tasks, nil
}

// trySend ne sme da blokira mutaciju: ako je kanal pun, stari snapshot se
// odbacuje i upisuje se najnoviji.
func trySend(sub *TaskSubscriber, tasks []models.Task) {
	select {
	case sub.C <- tasks:
		return
	default:
	}
	select {
	case <-sub.C:
	default:
	}
	select {
	case sub.C <- tasks:
	default:
	}
}
