package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kino/handlers"
	"kino/models"
	authsvc "kino/services/auth"
)

type authServiceStub struct {
	session    models.Session
	err        error
	loggedOut  bool
	gotEmail   string
	gotName    string
	gotPayload string
}

func (s *authServiceStub) Register(name, email, password string) (models.Session, error) {
	s.gotName, s.gotEmail, s.gotPayload = name, email, password
	return s.session, s.err
}

func (s *authServiceStub) Login(email, password string) (models.Session, error) {
	s.gotEmail, s.gotPayload = email, password
	return s.session, s.err
}

func (s *authServiceStub) Logout() error {
	s.loggedOut = true
	return nil
}

type authGateStub struct {
	session models.Session
}

func (g *authGateStub) Authenticated() bool     { return g.session.Authenticated }
func (g *authGateStub) Session() models.Session { return g.session }
func (g *authGateStub) SetDisplayName(name string) error {
	if !g.session.Authenticated {
		return authsvc.ErrAuthRequired
	}
	g.session.DisplayName = name
	return nil
}

func TestRegisterEndpointReturnsToken(t *testing.T) {
	service := &authServiceStub{session: models.Session{
		Authenticated: true,
		DisplayName:   "Ada",
		Email:         "ada@example.com",
		Token:         "tok-123",
	}}
	handler := handlers.NewAuthHandler(service, &authGateStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "tok-123" || resp.User.Name != "Ada" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if service.gotEmail != "ada@example.com" {
		t.Fatalf("expected email forwarded, got %q", service.gotEmail)
	}
}

func TestRegisterEndpointMapsValidationErrors(t *testing.T) {
	service := &authServiceStub{err: authsvc.ErrInvalidInput}
	handler := handlers.NewAuthHandler(service, &authGateStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"name":"","email":"","password":""}`))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoginEndpointMapsBadCredentials(t *testing.T) {
	service := &authServiceStub{err: authsvc.ErrBadCredentials}
	handler := handlers.NewAuthHandler(service, &authGateStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"ada@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCurrentUserRequiresSession(t *testing.T) {
	handler := handlers.NewAuthHandler(&authServiceStub{}, &authGateStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.CurrentUser(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCurrentUserReturnsProfile(t *testing.T) {
	gate := &authGateStub{session: models.Session{
		Authenticated: true,
		DisplayName:   "Ada",
		Email:         "ada@example.com",
	}}
	handler := handlers.NewAuthHandler(&authServiceStub{}, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.CurrentUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["name"] != "Ada" || resp["email"] != "ada@example.com" {
		t.Fatalf("unexpected profile: %v", resp)
	}
}

func TestUpdateProfileChangesDisplayName(t *testing.T) {
	gate := &authGateStub{session: models.Session{Authenticated: true, DisplayName: "Ada"}}
	handler := handlers.NewAuthHandler(&authServiceStub{}, gate)

	req := httptest.NewRequest(http.MethodPut, "/api/user", strings.NewReader(`{"name":"Countess"}`))
	rec := httptest.NewRecorder()
	handler.UpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gate.session.DisplayName != "Countess" {
		t.Fatalf("expected display name updated, got %q", gate.session.DisplayName)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	service := &authServiceStub{}
	gate := &authGateStub{session: models.Session{Authenticated: true}}
	handler := handlers.NewAuthHandler(service, gate)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !service.loggedOut {
		t.Fatalf("expected logout forwarded to service")
	}
}
