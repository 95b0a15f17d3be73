package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"dailyops/backend/logging"
	"dailyops/backend/models"
	"dailyops/backend/repositories"
	"dailyops/backend/utils"

	"golang.org/x/crypto/bcrypt"
)

// UserStore su operacije nad nalozima koje auth servis koristi.
type UserStore interface {
	InsertManager(ctx context.Context, manager *models.Manager) (string, error)
	InsertLaborer(ctx context.Context, laborer *models.Laborer) (string, error)
	GetManagerByID(ctx context.Context, id string) (models.Manager, error)
	GetLaborerByID(ctx context.Context, id string) (models.Laborer, error)
	GetManagerByEmail(ctx context.Context, email string) (models.Manager, error)
	GetLaborerByEmail(ctx context.Context, email string) (models.Laborer, error)
}

// AuthService pokriva registraciju, prijavu i razrešavanje profila po sesiji.
// Lozinka se čuva unutar samog zapisa uloge, pa je registracija jedan upis u bazu.
type AuthService struct {
	store     UserStore
	teams     *TeamService
	blackList map[string]bool

	Now      func() time.Time
	SendMail func(to, subject, body string) error
}

func NewAuthService(store UserStore, teams *TeamService, blackList map[string]bool) *AuthService {
	return &AuthService{
		store:     store,
		teams:     teams,
		blackList: blackList,
		Now:       time.Now,
		SendMail:  utils.SendEmail,
	}
}

// ValidatePassword proverava dužinu, veliko slovo, broj, specijalni karakter i black listu.
func (s *AuthService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	}

	hasUppercase := false
	for _, char := range password {
		if char >= 'A' && char <= 'Z' {
			hasUppercase = true
			break
		}
	}
	if !hasUppercase {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrValidation)
	}

	hasDigit := false
	for _, char := range password {
		if char >= '0' && char <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one number", ErrValidation)
	}

	specialChars := "!@#$%^&*.,"
	hasSpecial := false
	for _, char := range password {
		if strings.ContainsRune(specialChars, char) {
			hasSpecial = true
			break
		}
	}
	if !hasSpecial {
		return fmt.Errorf("%w: password must contain at least one special character", ErrValidation)
	}

	if s.blackList[password] {
		return fmt.Errorf("%w: password is too common, please choose a stronger one", ErrValidation)
	}

	return nil
}

// emailInUse proverava obe kolekcije; po jedan nalog sme da postoji za jedan email.
func (s *AuthService) emailInUse(ctx context.Context, email string) (bool, error) {
	_, err := s.store.GetManagerByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	_, err = s.store.GetLaborerByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// RegisterManager kreira nalog menadžera sa jedinstvenim timskim kodom i vraća token.
func (s *AuthService) RegisterManager(ctx context.Context, name, email, password string) (models.Manager, string, error) {
	if name == "" || email == "" {
		return models.Manager{}, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if err := s.ValidatePassword(password); err != nil {
		return models.Manager{}, "", err
	}

	taken, err := s.emailInUse(ctx, email)
	if err != nil {
		return models.Manager{}, "", err
	}
	if taken {
		return models.Manager{}, "", ErrEmailTaken
	}

	// Kod se rezerviše pre upisa; ako provera jedinstvenosti padne, ništa se ne čuva.
	teamCode, err := s.teams.UniqueTeamCode(ctx)
	if err != nil {
		return models.Manager{}, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Manager{}, "", fmt.Errorf("failed to hash password: %v", err)
	}

	manager := models.Manager{
		Name:      html.EscapeString(name),
		Email:     html.EscapeString(email),
		Password:  string(hashedPassword),
		TeamCode:  teamCode,
		Role:      models.RoleManager,
		CreatedAt: s.Now(),
	}

	id, err := s.store.InsertManager(ctx, &manager)
	if err != nil {
		return models.Manager{}, "", err
	}

	token, err := utils.GenerateToken(id, manager.Name, manager.Email, models.RoleManager)
	if err != nil {
		return models.Manager{}, "", fmt.Errorf("failed to generate token: %v", err)
	}

	// Email sa kodom je best effort; registracija ne sme da padne zbog SMTP-a.
	subject := "Your DailyOps team code"
	body := fmt.Sprintf("Welcome to DailyOps! Share this code with your team members so they can join: %s", teamCode)
	if err := s.SendMail(manager.Email, subject, body); err != nil {
		logging.Logger.Warnf("Event ID: TEAM_CODE_EMAIL_FAILED, Description: Failed to email team code to %s: %v", manager.Email, err)
	}

	return manager, token, nil
}

// RegisterLabor razrešava menadžera po timskom kodu pa kreira nalog radnika.
// Nepoznat kod je ErrInvalidCode i ništa se ne upisuje.
func (s *AuthService) RegisterLabor(ctx context.Context, name, email, password, managerCode string) (models.Laborer, string, error) {
	if name == "" || email == "" {
		return models.Laborer{}, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if err := s.ValidatePassword(password); err != nil {
		return models.Laborer{}, "", err
	}

	manager, err := s.teams.ManagerByCode(ctx, managerCode)
	if err != nil {
		return models.Laborer{}, "", err
	}

	taken, err := s.emailInUse(ctx, email)
	if err != nil {
		return models.Laborer{}, "", err
	}
	if taken {
		return models.Laborer{}, "", ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Laborer{}, "", fmt.Errorf("failed to hash password: %v", err)
	}

	laborer := models.Laborer{
		Name:        html.EscapeString(name),
		Email:       html.EscapeString(email),
		Password:    string(hashedPassword),
		ManagerID:   manager.ID.Hex(),
		ManagerCode: managerCode,
		Role:        models.RoleLabor,
		CreatedAt:   s.Now(),
	}

	id, err := s.store.InsertLaborer(ctx, &laborer)
	if err != nil {
		return models.Laborer{}, "", err
	}

	token, err := utils.GenerateToken(id, laborer.Name, laborer.Email, models.RoleLabor)
	if err != nil {
		return models.Laborer{}, "", fmt.Errorf("failed to generate token: %v", err)
	}

	subject := "Welcome to DailyOps"
	body := fmt.Sprintf("You joined %s's team. Your assigned tasks will show up on your dashboard.", manager.Name)
	if err := s.SendMail(laborer.Email, subject, body); err != nil {
		logging.Logger.Warnf("Event ID: WELCOME_EMAIL_FAILED, Description: Failed to email welcome message to %s: %v", laborer.Email, err)
	}

	return laborer, token, nil
}

// Login proverava lozinku i razrešava zapis uloge, prvo menadžere pa radnike.
// Vraća profil (Manager ili Laborer) i potpisan token.
func (s *AuthService) Login(ctx context.Context, email, password string) (interface{}, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	manager, err := s.store.GetManagerByEmail(ctx, email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(manager.Password), []byte(password)) != nil {
			return nil, "", ErrInvalidCredentials
		}
		token, err := utils.GenerateToken(manager.ID.Hex(), manager.Name, manager.Email, models.RoleManager)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate token: %v", err)
		}
		return manager, token, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	laborer, err := s.store.GetLaborerByEmail(ctx, email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(laborer.Password), []byte(password)) != nil {
			return nil, "", ErrInvalidCredentials
		}
		token, err := utils.GenerateToken(laborer.ID.Hex(), laborer.Name, laborer.Email, models.RoleLabor)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate token: %v", err)
		}
		return laborer, token, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	return nil, "", ErrProfileNotFound
}

// Profile vraća zapis uloge za sesiju; identitet bez zapisa je ErrProfileNotFound.
func (s *AuthService) Profile(ctx context.Context, session models.Session) (interface{}, error) {
	manager, err := s.store.GetManagerByID(ctx, session.UserID)
	if err == nil {
		return manager, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	laborer, err := s.store.GetLaborerByID(ctx, session.UserID)
	if err == nil {
		return laborer, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	return nil, ErrProfileNotFound
}
