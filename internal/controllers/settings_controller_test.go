package controllers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func TestUpdateSettingsChangesEnforcement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, adminToken := testutil.CreateUser(t, db, "admin1", models.RoleAdmin)
	_, staffToken := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.NewFromInt(30))

	// raise the terminal fee above the wallet balance
	w := testutil.DoJSON(t, r, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"terminal_fee": "50",
	}, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("update settings status = %d: %s", w.Code, w.Body.String())
	}

	if code := scanEntry(t, r, staffToken, vehicle.QRValue); code != http.StatusPaymentRequired {
		t.Fatalf("entry with raised fee status = %d, want 402", code)
	}

	// settings are admin-only
	w = testutil.DoJSON(t, r, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"terminal_fee": "10",
	}, staffToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("staff settings update status = %d, want 403", w.Code)
	}
	// the denied update must not have been applied
	settings, err := models.GetSettings(db)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !settings.TerminalFee.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("terminal fee = %s after denied update, want 50", settings.TerminalFee)
	}
}

func TestPublicSettingsFeed(t *testing.T) {
	testutil.SetupTestDB(t)
	r := routes.SetupRouter()

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/settings", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		TerminalFee      string `json:"terminal_fee"`
		MinDepositAmount string `json:"min_deposit_amount"`
		QueueCapacity    int    `json:"queue_capacity"`
	}
	testutil.Decode(t, w, &resp)

	// defaults created on first access
	if fee, _ := decimal.NewFromString(resp.TerminalFee); !fee.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("terminal fee = %s, want default 20", resp.TerminalFee)
	}
	if min, _ := decimal.NewFromString(resp.MinDepositAmount); !min.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("min deposit = %s, want default 100", resp.MinDepositAmount)
	}
	if resp.QueueCapacity != 50 {
		t.Fatalf("queue capacity = %d, want default 50", resp.QueueCapacity)
	}
}
