package integration

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "alice@example.com", "password123")
	if token == "" {
		t.Fatal("expected non-empty token from register")
	}
	if userID == 0 {
		t.Fatal("expected non-zero user ID")
	}

	// Login with the same credentials.
	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["token"] == nil || result["token"] == "" {
		t.Error("expected non-empty token from login")
	}

	// Wrong password is rejected.
	rec = app.request("POST", "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "bob@example.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"bob@example.com","password":"password456"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/budgets", "/api/v1/transactions"} {
		rec := app.request("GET", path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for %s without token, got %d", path, rec.Code)
		}
	}

	rec := app.request("GET", "/api/v1/profile", "", "not-a-valid-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestGetProfile(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "carol@example.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "carol@example.com" {
		t.Errorf("expected carol@example.com, got %v", user["email"])
	}
}
