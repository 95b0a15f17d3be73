package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailyops/backend/models"
	"dailyops/backend/repositories"

	"golang.org/x/exp/rand"
)

const (
	teamCodeLength      = 6
	teamCodeCharset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxTeamCodeAttempts = 10
)

// TeamStore su operacije nad nalozima koje tim servis koristi.
type TeamStore interface {
	GetManagerByTeamCode(ctx context.Context, code string) (models.Manager, error)
	SetTeamCode(ctx context.Context, managerID, code string) error
	GetLaborersByManager(ctx context.Context, managerID string) ([]models.Laborer, error)
}

// TeamService generiše i proverava timske kodove i vraća članove tima.
type TeamService struct {
	store TeamStore
	rng   *rand.Rand
}

func NewTeamService(store TeamStore) *TeamService {
	return &TeamService{
		store: store,
		rng:   rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (s *TeamService) generateCode() string {
	code := make([]byte, teamCodeLength)
	for i := range code {
		code[i] = teamCodeCharset[s.rng.Intn(len(teamCodeCharset))]
	}
	return string(code)
}

// UniqueTeamCode generiše kandidata i proverava da li ga neki menadžer već drži.
// Petlja je ograničena; posle maxTeamCodeAttempts pokušaja vraća ErrTeamCodeExhausted.
func (s *TeamService) UniqueTeamCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTeamCodeAttempts; attempt++ {
		candidate := s.generateCode()
		_, err := s.store.GetManagerByTeamCode(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check team code uniqueness: %v", err)
		}
	}
	return "", ErrTeamCodeExhausted
}

// ManagerByCode pronalazi menadžera po timskom kodu; nepoznat kod je ErrInvalidCode.
func (s *TeamService) ManagerByCode(ctx context.Context, code string) (models.Manager, error) {
	if code == "" {
		return models.Manager{}, ErrInvalidCode
	}
	manager, err := s.store.GetManagerByTeamCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Manager{}, ErrInvalidCode
	}
	if err != nil {
		return models.Manager{}, fmt.Errorf("failed to look up team code: %v", err)
	}
	return manager, nil
}

// RegenerateTeamCode dodeljuje menadžeru nov jedinstven kod; stari kod prestaje da važi.
func (s *TeamService) RegenerateTeamCode(ctx context.Context, session models.Session) (string, error) {
	if session.Role != models.RoleManager {
		return "", ErrForbidden
	}

	code, err := s.UniqueTeamCode(ctx)
	if err != nil {
		return "", err
	}

	if err := s.store.SetTeamCode(ctx, session.UserID, code); err != nil {
		return "", fmt.Errorf("failed to store new team code: %v", err)
	}
	return code, nil
}

// Members vraća radnike vezane za menadžera iz sesije.
func (s *TeamService) Members(ctx context.Context, session models.Session) ([]models.Laborer, error) {
	if session.Role != models.RoleManager {
		return nil, ErrForbidden
	}
	return s.store.GetLaborersByManager(ctx, session.UserID)
}
