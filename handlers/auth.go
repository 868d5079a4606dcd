package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kino/models"
	authsvc "kino/services/auth"
)

type authService interface {
	Register(name, email, password string) (models.Session, error)
	Login(email, password string) (models.Session, error)
	Logout() error
}

type authGate interface {
	Authenticated() bool
	Session() models.Session
	SetDisplayName(name string) error
}

var (
	_ authService = (*authsvc.Service)(nil)
	_ authGate    = (*authsvc.Gate)(nil)
)

// AuthHandler exposes register/login/logout and the current profile.
type AuthHandler struct {
	Service authService
	Gate    authGate
}

func NewAuthHandler(service authService, gate authGate) *AuthHandler {
	return &AuthHandler{Service: service, Gate: gate}
}

// Register creates an account and starts a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.Service.Register(request.Name, request.Email, request.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeMessage(w, http.StatusConflict, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    map[string]string{"name": session.DisplayName, "email": session.Email},
		"token":   session.Token,
		"message": "user registered successfully",
	})
}

// Login exchanges credentials for a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.Service.Login(request.Email, request.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrBadCredentials) {
			writeMessage(w, http.StatusUnauthorized, "bad credentials")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    map[string]string{"name": session.DisplayName, "email": session.Email},
		"token":   session.Token,
		"message": "logged in successfully",
	})
}

// Logout revokes the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.Gate.Authenticated() {
		writeAuthRequired(w)
		return
	}
	if err := h.Service.Logout(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "logged out successfully")
}

// CurrentUser returns the active session profile.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if !h.Gate.Authenticated() {
		writeAuthRequired(w)
		return
	}
	session := h.Gate.Session()
	writeJSON(w, http.StatusOK, map[string]string{
		"name":  session.DisplayName,
		"email": session.Email,
	})
}

// UpdateProfile changes the display name on the active session.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "name must not be empty")
		return
	}

	if err := h.Gate.SetDisplayName(request.Name); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeMessage(w, http.StatusOK, "profile updated")
}
