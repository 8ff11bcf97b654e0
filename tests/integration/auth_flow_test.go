package integration

import (
	"fmt"
	"net/http"
	"testing"

	"dindin/internal/models"
)

func TestAuthFlow_RegisterLoginProfileRefresh(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register
	accessToken, refreshToken, userID := app.registerUser(t, "auth@test.com", "password123")
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected non-empty tokens from registration")
	}
	if userID == "" {
		t.Fatal("expected a user ID")
	}

	// Step 2: Login with same credentials
	loginAccess, loginRefresh := app.loginUser(t, "auth@test.com", "password123")
	if loginAccess == "" || loginRefresh == "" {
		t.Fatal("expected non-empty tokens from login")
	}

	// Step 3: Access profile with login access token
	rec := app.request("GET", "/api/v1/profile", "", loginAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}
	accounts := user["accounts"].([]interface{})
	categories := user["categories"].([]interface{})
	if len(accounts) != len(models.DefaultAccounts) || len(categories) != len(models.DefaultCategories) {
		t.Errorf("expected seeded defaults, got %d accounts / %d categories", len(accounts), len(categories))
	}

	// Step 4: Refresh the token pair
	body := fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh)
	rec = app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	newAccess := parseJSON(t, rec)["access_token"].(string)
	if newAccess == "" {
		t.Fatal("expected non-empty new access token after refresh")
	}

	// Step 5: Access profile with the new access token
	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with new token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_RegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"name":"Other","email":"dup@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "EMAIL_IN_USE")
}

func TestAuthFlow_LoginWrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "wrong@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"wrong@test.com","password":"wrongpassword"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INVALID_CREDENTIALS")
}

func TestAuthFlow_LoginUnknownEmail(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"nobody@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	// Unknown emails and wrong passwords are indistinguishable.
	assertErrorCode(t, rec, "INVALID_CREDENTIALS")
}

func TestAuthFlow_AccountLockout(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "lockout@test.com", "password123")

	for i := 0; i < 5; i++ {
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"lockout@test.com","password":"wrongpassword"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"lockout@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423 after lockout, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "ACCOUNT_LOCKED")
}

func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	paths := []struct{ method, path string }{
		{"GET", "/api/v1/profile"},
		{"GET", "/api/v1/session"},
		{"GET", "/api/v1/transactions"},
		{"GET", "/api/v1/summary"},
		{"GET", "/api/v1/chat/messages"},
	}
	for _, p := range paths {
		rec := app.request(p.method, p.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestAuthFlow_RefreshTokenCannotAccessProtectedRoutes(t *testing.T) {
	app := setupApp(t)

	_, refreshToken, _ := app.registerUser(t, "tokens@test.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", refreshToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token on protected route, got %d", rec.Code)
	}
}

func TestAuthFlow_LogoutRevokesRefreshToken(t *testing.T) {
	app := setupApp(t)

	accessToken, refreshToken, _ := app.registerUser(t, "logout@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/logout", "{}", accessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d %s", rec.Code, rec.Body.String())
	}

	body := fmt.Sprintf(`{"refresh_token":%q}`, refreshToken)
	rec = app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked refresh token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_ProfileUpdate(t *testing.T) {
	app := setupApp(t)

	accessToken, _, _ := app.registerUser(t, "profile@test.com", "password123")

	rec := app.request("PUT", "/api/v1/profile",
		`{"name":"Novo Nome","username":"novonome","accounts":["Carteira"],"categories":["Alimentação","Outros"]}`,
		accessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/profile", "", accessToken)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["name"] != "Novo Nome" {
		t.Errorf("expected replaced name, got %v", user["name"])
	}
	if accounts := user["accounts"].([]interface{}); len(accounts) != 1 {
		t.Errorf("expected 1 account after replacement, got %d", len(accounts))
	}

	// Credentials survive the profile replacement.
	app.loginUser(t, "profile@test.com", "password123")
}
