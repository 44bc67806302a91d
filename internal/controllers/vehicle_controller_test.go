package controllers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"rdfs_terminal/internal/models"
	"rdfs_terminal/internal/routes"
	"rdfs_terminal/internal/testutil"
)

func registerDriver(t *testing.T, r http.Handler, token, last, license string) uint {
	t.Helper()
	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/drivers", map[string]string{
		"first_name":     "Juan",
		"last_name":      last,
		"mobile_number":  "09171234567",
		"license_number": license,
		"license_expiry": time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("register driver status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Driver models.Driver `json:"driver"`
	}
	testutil.Decode(t, w, &resp)
	return resp.Driver.ID
}

func vehicleBody(driverID uint, plate string) map[string]interface{} {
	return map[string]interface{}{
		"vehicle_type":        "jeepney",
		"ownership_type":      "owned",
		"license_plate":       plate,
		"cr_number":           "CR-" + plate,
		"or_number":           "OR-" + plate,
		"vin_number":          "VIN-" + plate,
		"year_model":          2020,
		"registration_number": "REG-" + plate,
		"registration_expiry": time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		"seat_capacity":       20,
		"assigned_driver_id":  driverID,
	}
}

func TestRegisterVehicleCreatesWalletAndQR(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	driverID := registerDriver(t, r, token, "Cruz", "LIC-001")

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/vehicles", vehicleBody(driverID, "abc 1234"), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Vehicle models.Vehicle `json:"vehicle"`
		Wallet  models.Wallet  `json:"wallet"`
	}
	testutil.Decode(t, w, &resp)

	if resp.Vehicle.LicensePlate != "ABC 1234" {
		t.Fatalf("plate = %q, want upper-cased ABC 1234", resp.Vehicle.LicensePlate)
	}
	wantQR := models.MakeQRValue(resp.Vehicle.ID, "ABC 1234")
	if resp.Vehicle.QRValue != wantQR {
		t.Fatalf("qr = %q, want %q", resp.Vehicle.QRValue, wantQR)
	}
	if !strings.HasPrefix(resp.Vehicle.QRValue, "VEH-") || strings.Contains(resp.Vehicle.QRValue, " ") {
		t.Fatalf("qr = %q, want VEH- prefix and no spaces", resp.Vehicle.QRValue)
	}
	if resp.Wallet.VehicleID != resp.Vehicle.ID || !resp.Wallet.Balance.IsZero() {
		t.Fatalf("wallet = %+v, want zero balance on the new vehicle", resp.Wallet)
	}
}

func TestRegisterVehicleDuplicatePlate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	first := registerDriver(t, r, token, "Cruz", "LIC-001")
	second := registerDriver(t, r, token, "Reyes", "LIC-002")

	if w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/vehicles", vehicleBody(first, "ABC 1234"), token); w.Code != http.StatusCreated {
		t.Fatalf("first vehicle status = %d: %s", w.Code, w.Body.String())
	}
	if w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/vehicles", vehicleBody(second, "ABC 1234"), token); w.Code != http.StatusConflict {
		t.Fatalf("duplicate plate status = %d, want 409: %s", w.Code, w.Body.String())
	}

	// the rolled-back vehicle must not leave a wallet behind
	var wallets int64
	db.Model(&models.Wallet{}).Count(&wallets)
	if wallets != 1 {
		t.Fatalf("wallet count = %d, want 1", wallets)
	}
}

func TestRegisterVehicleUnknownDriver(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/vehicles", vehicleBody(999, "ABC 1234"), token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestDeleteDriverBlockedWhileAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)
	driverID := registerDriver(t, r, token, "Cruz", "LIC-001")

	if w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/vehicles", vehicleBody(driverID, "ABC 1234"), token); w.Code != http.StatusCreated {
		t.Fatalf("vehicle status = %d: %s", w.Code, w.Body.String())
	}

	if w := testutil.DoJSON(t, r, http.MethodDelete, "/terminal/drivers/"+itoa(driverID), nil, token); w.Code != http.StatusBadRequest {
		t.Fatalf("delete assigned driver status = %d, want 400", w.Code)
	}
}

func TestRegisterDriverRejectsExpiredLicense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/drivers", map[string]string{
		"first_name":     "Juan",
		"last_name":      "Cruz",
		"mobile_number":  "09171234567",
		"license_number": "LIC-OLD",
		"license_expiry": "2020-01-01",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}
