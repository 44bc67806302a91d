package controllers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func TestRequestDepositBelowMinimum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	w := testutil.DoJSON(t, r, http.MethodPost, "/treasurer/deposits", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"amount":     "50",
		"or_code":    "OR-0001",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Deposit{}).Count(&count)
	if count != 0 {
		t.Fatalf("deposit count = %d, want 0", count)
	}
}

func TestRequestDepositDuplicateORCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	body := map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"amount":     "200",
		"or_code":    "OR-0001",
	}
	if w := testutil.DoJSON(t, r, http.MethodPost, "/treasurer/deposits", body, token); w.Code != http.StatusCreated {
		t.Fatalf("first request status = %d: %s", w.Code, w.Body.String())
	}
	if w := testutil.DoJSON(t, r, http.MethodPost, "/treasurer/deposits", body, token); w.Code != http.StatusConflict {
		t.Fatalf("second request status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestRequestDepositDoesNotTouchWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(300))

	w := testutil.DoJSON(t, r, http.MethodPost, "/treasurer/deposits", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"amount":     "200",
		"or_code":    "OR-0002",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance = %s, want 300 (pending requests must not credit)", got)
	}
}

func submitRequest(t *testing.T, r http.Handler, token string, vehicleID uint, orCode string) uint {
	t.Helper()
	w := testutil.DoJSON(t, r, http.MethodPost, "/treasurer/deposits", map[string]interface{}{
		"vehicle_id": vehicleID,
		"amount":     "200",
		"or_code":    orCode,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("request deposit status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Deposit models.Deposit `json:"deposit"`
	}
	testutil.Decode(t, w, &resp)
	return resp.Deposit.ID
}

func TestApproveDepositCreditsWalletExactlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, treasurerToken := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	depositID := submitRequest(t, r, treasurerToken, vehicle.ID, "OR-0003")
	path := "/terminal/pending-deposits/" + itoa(depositID) + "/decide"

	w := testutil.DoJSON(t, r, http.MethodPost, path, map[string]string{"action": "approve"}, staffToken)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", w.Code, w.Body.String())
	}
	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance after approval = %s, want 200", got)
	}

	// deciding twice must not credit twice
	w = testutil.DoJSON(t, r, http.MethodPost, path, map[string]string{"action": "approve"}, staffToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("second decision status = %d, want 409: %s", w.Code, w.Body.String())
	}
	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance after double approval = %s, want 200", got)
	}
}

func TestRejectDepositLeavesBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, treasurerToken := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(50))

	depositID := submitRequest(t, r, treasurerToken, vehicle.ID, "OR-0004")
	path := "/terminal/pending-deposits/" + itoa(depositID) + "/decide"

	w := testutil.DoJSON(t, r, http.MethodPost, path, map[string]string{"action": "reject", "notes": "unreadable receipt"}, staffToken)
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d: %s", w.Code, w.Body.String())
	}

	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance after rejection = %s, want 50", got)
	}
	var deposit models.Deposit
	if err := db.First(&deposit, depositID).Error; err != nil {
		t.Fatalf("load deposit: %v", err)
	}
	if deposit.Status != models.DepositRejected {
		t.Fatalf("status = %q, want rejected", deposit.Status)
	}
	if deposit.ApprovedByID == nil || deposit.ApprovedAt == nil {
		t.Fatal("decision trail (approved_by, approved_at) not recorded")
	}
}

func TestTreasurerCannotSeeOthersDeposits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, ownerToken := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	_, otherToken := testutil.CreateUser(t, db, "treasurer2", models.RoleTreasurer)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	depositID := submitRequest(t, r, ownerToken, vehicle.ID, "OR-0005")

	w := testutil.DoJSON(t, r, http.MethodGet, "/treasurer/deposits/"+itoa(depositID), nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
	if w := testutil.DoJSON(t, r, http.MethodGet, "/treasurer/deposits/"+itoa(depositID), nil, ownerToken); w.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200: %s", w.Code, w.Body.String())
	}
}
