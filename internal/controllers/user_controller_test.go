package controllers_test

import (
	"net/http"
	"testing"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func TestStaffAdminCannotCreateAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/accounts/users", map[string]string{
		"username": "sneaky",
		"password": "password123",
		"role":     models.RoleAdmin,
	}, staffToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}

	// but a treasurer account is within their reach
	w = testutil.DoJSON(t, r, http.MethodPost, "/accounts/users", map[string]string{
		"username": "treasurer_new",
		"password": "password123",
		"role":     models.RoleTreasurer,
	}, staffToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, adminToken := testutil.CreateUser(t, db, "admin1", models.RoleAdmin)

	body := map[string]string{
		"username": "clerk",
		"password": "password123",
		"role":     models.RoleTreasurer,
	}
	if w := testutil.DoJSON(t, r, http.MethodPost, "/accounts/users", body, adminToken); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d: %s", w.Code, w.Body.String())
	}
	if w := testutil.DoJSON(t, r, http.MethodPost, "/accounts/users", body, adminToken); w.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestStaffAdminCannotEditAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	admin, _ := testutil.CreateUser(t, db, "admin1", models.RoleAdmin)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPatch, "/accounts/users/"+itoa(admin.ID), map[string]string{
		"first_name": "Hijacked",
	}, staffToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}

func TestDeleteUserIsAdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	admin, adminToken := testutil.CreateUser(t, db, "admin1", models.RoleAdmin)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	victim, _ := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)

	if w := testutil.DoJSON(t, r, http.MethodDelete, "/accounts/users/"+itoa(victim.ID), nil, staffToken); w.Code != http.StatusForbidden {
		t.Fatalf("staff delete status = %d, want 403", w.Code)
	}
	// the denied request must not have executed the handler
	var survived int64
	db.Model(&models.User{}).Where("id = ?", victim.ID).Count(&survived)
	if survived != 1 {
		t.Fatal("user was deleted by a request that should have been denied")
	}

	// admins cannot delete themselves
	if w := testutil.DoJSON(t, r, http.MethodDelete, "/accounts/users/"+itoa(admin.ID), nil, adminToken); w.Code != http.StatusForbidden {
		t.Fatalf("self delete status = %d, want 403", w.Code)
	}

	if w := testutil.DoJSON(t, r, http.MethodDelete, "/accounts/users/"+itoa(victim.ID), nil, adminToken); w.Code != http.StatusOK {
		t.Fatalf("admin delete status = %d: %s", w.Code, w.Body.String())
	}
	var count int64
	db.Model(&models.User{}).Where("id = ?", victim.ID).Count(&count)
	if count != 0 {
		t.Fatal("user still present after deletion")
	}
}

func TestListUsersScopedByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	testutil.CreateUser(t, db, "admin1", models.RoleAdmin)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)

	w := testutil.DoJSON(t, r, http.MethodGet, "/accounts/users", nil, staffToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []models.User `json:"data"`
	}
	testutil.Decode(t, w, &resp)
	// staff admins see neither admins nor themselves
	if len(resp.Data) != 1 || resp.Data[0].Role != models.RoleTreasurer {
		t.Fatalf("visible users = %+v, want only the treasurer", resp.Data)
	}
}
