package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dailyops/backend/models"
)

func TestGenerateCodeFormat(t *testing.T) {
	service := NewTeamService(&stubTeamStore{})

	for i := 0; i < 100; i++ {
		code := service.generateCode()
		if len(code) != teamCodeLength {
			t.Fatalf("expected code of length %d, got %q", teamCodeLength, code)
		}
		for _, char := range code {
			if !strings.ContainsRune(teamCodeCharset, char) {
				t.Fatalf("code %q contains character outside charset", code)
			}
		}
	}
}

func TestUniqueTeamCodeRetriesOnCollision(t *testing.T) {
	store := &stubTeamStore{collideFirst: 3}
	service := NewTeamService(store)

	code, err := service.UniqueTeamCode(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == "" {
		t.Fatal("expected non-empty code")
	}
	if store.lookups != 4 {
		t.Fatalf("expected 4 uniqueness checks, got %d", store.lookups)
	}
}

func TestUniqueTeamCodeExhausted(t *testing.T) {
	store := &stubTeamStore{collideFirst: maxTeamCodeAttempts + 1}
	service := NewTeamService(store)

	_, err := service.UniqueTeamCode(context.Background())
	if !errors.Is(err, ErrTeamCodeExhausted) {
		t.Fatalf("expected ErrTeamCodeExhausted, got %v", err)
	}
	if store.lookups != maxTeamCodeAttempts {
		t.Fatalf("expected %d attempts, got %d", maxTeamCodeAttempts, store.lookups)
	}
}

func TestUniqueTeamCodeStoreError(t *testing.T) {
	store := &stubTeamStore{lookupErr: errors.New("connection reset")}
	service := NewTeamService(store)

	_, err := service.UniqueTeamCode(context.Background())
	if err == nil {
		t.Fatal("expected error when uniqueness check fails")
	}
	if errors.Is(err, ErrTeamCodeExhausted) {
		t.Fatalf("store failure must not look like exhaustion, got %v", err)
	}
}

func TestManagerByCodeUnknown(t *testing.T) {
	service := NewTeamService(newFakeUserStore())

	if _, err := service.ManagerByCode(context.Background(), "NOSUCH"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := service.ManagerByCode(context.Background(), ""); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for empty code, got %v", err)
	}
}

func TestRegenerateTeamCodeReplacesOldCode(t *testing.T) {
	store := newFakeUserStore()
	service := NewTeamService(store)

	manager := models.Manager{Name: "Mara", Email: "mara@example.com", TeamCode: "OLD123", Role: models.RoleManager}
	managerID, err := store.InsertManager(context.Background(), &manager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := models.Session{UserID: managerID, Role: models.RoleManager}
	code, err := service.RegenerateTeamCode(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == "OLD123" {
		t.Fatal("expected a fresh code")
	}

	stored, err := store.GetManagerByID(context.Background(), managerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.TeamCode != code {
		t.Fatalf("expected stored code %q, got %q", code, stored.TeamCode)
	}
}

func TestRegenerateTeamCodeRequiresManager(t *testing.T) {
	service := NewTeamService(newFakeUserStore())

	session := models.Session{UserID: "labor-1", Role: models.RoleLabor}
	if _, err := service.RegenerateTeamCode(context.Background(), session); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMembersRequiresManager(t *testing.T) {
	service := NewTeamService(newFakeUserStore())

	session := models.Session{UserID: "labor-1", Role: models.RoleLabor}
	if _, err := service.Members(context.Background(), session); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
