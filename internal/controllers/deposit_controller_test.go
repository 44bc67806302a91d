package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func TestCreateDepositCreditsWalletImmediately(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(100))

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/deposits", map[string]interface{}{
		"vehicle_id":     vehicle.ID,
		"amount":         "250",
		"payment_method": "gcash",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Deposit models.Deposit `json:"deposit"`
	}
	testutil.Decode(t, w, &resp)
	if resp.Deposit.Status != models.DepositSuccessful {
		t.Fatalf("status = %q, want successful", resp.Deposit.Status)
	}
	if resp.Deposit.ReferenceNumber == "" {
		t.Fatal("reference number not assigned")
	}
	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("balance = %s, want 350", got)
	}
}

func TestCreateDepositBelowMinimum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	// default minimum is 100
	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/deposits", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"amount":     "99.99",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if got := testutil.WalletBalance(t, db, vehicle.ID); !got.IsZero() {
		t.Fatalf("balance = %s, want 0", got)
	}
}

func TestCreateDepositUnknownVehicle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/deposits", map[string]interface{}{
		"vehicle_id": 999,
		"amount":     "250",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestDepositsPageStatsAndSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(500))
	testutil.SeedVehicle(t, db, "BBB 2222", decimal.NewFromInt(50))

	w := testutil.DoJSON(t, r, http.MethodGet, "/terminal/deposits", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Wallets         []map[string]interface{} `json:"wallets"`
		TotalBalance    string                   `json:"total_balance"`
		LowBalanceCount int64                    `json:"low_balance_count"`
	}
	testutil.Decode(t, w, &resp)
	if len(resp.Wallets) != 2 {
		t.Fatalf("wallet rows = %d, want 2", len(resp.Wallets))
	}
	// BBB 2222 sits below the default 100 minimum
	if resp.LowBalanceCount != 1 {
		t.Fatalf("low balance count = %d, want 1", resp.LowBalanceCount)
	}

	w = testutil.DoJSON(t, r, http.MethodGet, "/terminal/deposits?q=bbb", nil, token)
	testutil.Decode(t, w, &resp)
	if len(resp.Wallets) != 1 {
		t.Fatalf("filtered wallet rows = %d, want 1", len(resp.Wallets))
	}
}

func TestExportDepositsCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	for _, amount := range []string{"150", "200"} {
		w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/deposits", map[string]interface{}{
			"vehicle_id": vehicle.ID,
			"amount":     amount,
		}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("deposit status = %d: %s", w.Code, w.Body.String())
		}
	}

	w := testutil.DoJSON(t, r, http.MethodGet, "/terminal/deposits/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "deposits_") || !strings.Contains(got, ".csv") {
		t.Fatalf("Content-Disposition = %q", got)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 { // header + 2 deposits
		t.Fatalf("csv lines = %d, want 3:\n%s", len(lines), w.Body.String())
	}
	if !strings.HasPrefix(lines[0], "Reference Number,Date & Time,Driver Name,License Plate") {
		t.Fatalf("csv header = %q", lines[0])
	}
}

func TestAjaxHelpers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "treasurer1", models.RoleTreasurer)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(120))

	w := testutil.DoJSON(t, r, http.MethodGet, "/ajax/search-drivers?q=aaa", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d: %s", w.Code, w.Body.String())
	}
	var search struct {
		Results []struct {
			VehicleID    uint   `json:"vehicle_id"`
			LicensePlate string `json:"license_plate"`
		} `json:"results"`
	}
	testutil.Decode(t, w, &search)
	if len(search.Results) != 1 || search.Results[0].VehicleID != vehicle.ID {
		t.Fatalf("search results = %+v", search.Results)
	}

	w = testutil.DoJSON(t, r, http.MethodGet, "/ajax/validate-or-code?or_code=OR-FRESH", nil, token)
	var valid struct {
		Valid bool `json:"valid"`
	}
	testutil.Decode(t, w, &valid)
	if !valid.Valid {
		t.Fatal("unused OR code reported as taken")
	}

	w = testutil.DoJSON(t, r, http.MethodGet, "/ajax/wallet-balance?vehicle_id="+itoa(vehicle.ID), nil, token)
	var balance struct {
		Balance string `json:"balance"`
		Exists  bool   `json:"exists"`
	}
	testutil.Decode(t, w, &balance)
	if !balance.Exists {
		t.Fatal("wallet not found")
	}
	if got, _ := decimal.NewFromString(balance.Balance); !got.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("balance = %s, want 120", balance.Balance)
	}
}
