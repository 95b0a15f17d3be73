package handlers

import (
	"encoding/json"
	"net/http"

	"dailyops/backend/logging"
	"dailyops/backend/middleware"
	"dailyops/backend/services"
)

type AuthHandler struct {
	AuthService *services.AuthService
	TeamService *services.TeamService
}

type RegisterManagerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterLaborRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	ManagerCode string `json:"managerCode"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// RegisterManager kreira nalog menadžera i odmah vraća token i profil sa timskim kodom.
func (h *AuthHandler) RegisterManager(w http.ResponseWriter, r *http.Request) {
	var req RegisterManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	manager, token, err := h.AuthService.RegisterManager(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: MANAGER_REGISTERED, Description: Manager %s registered with team code %s", manager.Email, manager.TeamCode)
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: manager})
}

// RegisterLabor kreira nalog radnika vezan za menadžera preko timskog koda.
func (h *AuthHandler) RegisterLabor(w http.ResponseWriter, r *http.Request) {
	var req RegisterLaborRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	laborer, token, err := h.AuthService.RegisterLabor(r.Context(), req.Name, req.Email, req.Password, req.ManagerCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: LABOR_REGISTERED, Description: Laborer %s joined manager %s", laborer.Email, laborer.ManagerID)
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: laborer})
}

// Login proverava kredencijale i vraća token sa profilom uloge.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	profile, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: profile})
}

// Me vraća svež zapis uloge za prijavljenu sesiju.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.AuthService.Profile(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// RegenerateTeamCode dodeljuje menadžeru nov kod; stari odmah prestaje da važi.
func (h *AuthHandler) RegenerateTeamCode(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	code, err := h.TeamService.RegenerateTeamCode(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TEAM_CODE_REGENERATED, Description: Manager %s regenerated team code", session.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"teamCode": code})
}

// TeamMembers vraća radnike u timu menadžera, za izbor izvršioca pri kreiranju zadatka.
func (h *AuthHandler) TeamMembers(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	members, err := h.TeamService.Members(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}
