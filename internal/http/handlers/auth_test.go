package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"zentra/internal/middleware"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _, _, _, _, _ := newTestApp()

	body := strings.NewReader(`{"username":"maha","email":"maha@example.com","password":"s3cret-pass"}`)
	req := httptest.NewRequest("POST", "/api/auth/register", body)
	rr := httptest.NewRecorder()
	app.AuthRegister(rr, req)

	if rr.Code != 201 {
		t.Fatalf("register: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var reg authResponse
	if err := json.NewDecoder(rr.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if reg.Token == "" {
		t.Fatalf("register returned no token")
	}
	if reg.User.Plan != "free" {
		t.Fatalf("new accounts must start on free, got %q", reg.User.Plan)
	}
	if reg.User.RemainingApps != 3 {
		t.Fatalf("remaining apps: got %d, want 3", reg.User.RemainingApps)
	}

	claims, err := middleware.VerifyToken(app.Config.JWTSecret, reg.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != reg.User.ID {
		t.Fatalf("token subject mismatch: %s vs %s", claims.Subject, reg.User.ID)
	}

	body = strings.NewReader(`{"email":"maha@example.com","password":"s3cret-pass"}`)
	req = httptest.NewRequest("POST", "/api/auth/login", body)
	rr = httptest.NewRecorder()
	app.AuthLogin(rr, req)

	if rr.Code != 200 {
		t.Fatalf("login: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	app, _, _, _, _, _ := newTestApp()

	body := strings.NewReader(`{"username":"maha","email":"maha@example.com","password":"s3cret-pass"}`)
	req := httptest.NewRequest("POST", "/api/auth/register", body)
	rr := httptest.NewRecorder()
	app.AuthRegister(rr, req)
	if rr.Code != 201 {
		t.Fatalf("register: got %d, want 201", rr.Code)
	}

	body = strings.NewReader(`{"email":"maha@example.com","password":"wrong-pass"}`)
	req = httptest.NewRequest("POST", "/api/auth/login", body)
	rr = httptest.NewRecorder()
	app.AuthLogin(rr, req)

	if rr.Code != 401 {
		t.Fatalf("login with wrong password: got %d, want 401", rr.Code)
	}
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	app, _, _, _, _, _ := newTestApp()

	register := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"username":"maha","email":"maha@example.com","password":"s3cret-pass"}`)
		req := httptest.NewRequest("POST", "/api/auth/register", body)
		rr := httptest.NewRecorder()
		app.AuthRegister(rr, req)
		return rr
	}

	if rr := register(); rr.Code != 201 {
		t.Fatalf("first register: got %d, want 201", rr.Code)
	}
	if rr := register(); rr.Code != 409 {
		t.Fatalf("duplicate register: got %d, want 409", rr.Code)
	}
}

func TestAuthRegister_RejectsWeakInput(t *testing.T) {
	app, _, _, _, _, _ := newTestApp()

	cases := []string{
		`{"username":"ab","email":"a@b.com","password":"s3cret-pass"}`,
		`{"username":"maha","email":"not-an-email","password":"s3cret-pass"}`,
		`{"username":"maha","email":"a@b.com","password":"short"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		app.AuthRegister(rr, req)
		if rr.Code != 400 {
			t.Fatalf("payload %s: got %d, want 400", body, rr.Code)
		}
	}
}
