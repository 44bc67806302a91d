package controllers_test

import (
	"net/http"
	"testing"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func TestLoginRoutesToRoleDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	testutil.CreateUser(t, db, "admin1", models.RoleAdmin)
	testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)

	cases := []struct {
		username, dashboard string
	}{
		{"admin1", "/admin/dashboard"},
		{"treasurer1", "/treasurer/dashboard"},
	}
	for _, tc := range cases {
		w := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"username": tc.username,
			"password": "password123",
		}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s login status = %d: %s", tc.username, w.Code, w.Body.String())
		}
		var resp struct {
			Token     string `json:"token"`
			Dashboard string `json:"dashboard"`
		}
		testutil.Decode(t, w, &resp)
		if resp.Token == "" {
			t.Fatalf("%s login returned no token", tc.username)
		}
		if resp.Dashboard != tc.dashboard {
			t.Fatalf("%s dashboard = %q, want %q", tc.username, resp.Dashboard, tc.dashboard)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	testutil.CreateUser(t, db, "admin1", models.RoleAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "admin1",
		"password": "wrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", w.Code)
	}

	w = testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost",
		"password": "password123",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	testutil.SetupTestDB(t)
	r := routes.SetupRouter()

	w := testutil.DoJSON(t, r, http.MethodGet, "/terminal/vehicles", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
