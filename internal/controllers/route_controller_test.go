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

func TestCreateRouteWithGeometry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	geojson := `{"type":"LineString","coordinates":[[125.0,6.1],[125.1,6.2]]}`
	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/routes", map[string]interface{}{
		"name":        "Coastal Road",
		"origin":      "Terminal",
		"destination": "Fishport",
		"base_fare":   "20",
		"geometry":    geojson,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Route struct {
			ID       uint   `json:"ID"`
			Geometry string `json:"geometry"`
		} `json:"route"`
	}
	testutil.Decode(t, w, &resp)
	// the geometry is stored as WKB and rendered back as GeoJSON
	if !strings.Contains(resp.Route.Geometry, `"LineString"`) {
		t.Fatalf("geometry = %q, want GeoJSON LineString", resp.Route.Geometry)
	}

	w = testutil.DoJSON(t, r, http.MethodGet, "/terminal/routes/"+itoa(resp.Route.ID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", w.Code, w.Body.String())
	}
	testutil.Decode(t, w, &resp)
	if !strings.Contains(resp.Route.Geometry, "125") {
		t.Fatalf("geometry did not survive the round trip: %q", resp.Route.Geometry)
	}
}

func TestCreateRouteRejectsBadGeometry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	w := testutil.DoJSON(t, r, http.MethodPost, "/terminal/routes", map[string]interface{}{
		"name":        "Broken",
		"origin":      "A",
		"destination": "B",
		"base_fare":   "10",
		"geometry":    `{"type":"Nonsense"}`,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestDeleteRouteWithVehiclesDeactivates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := routes.SetupRouter()
	_, token := testutil.CreateUser(t, db, "staff1", models.RoleStaffAdmin)

	vehicle := testutil.SeedVehicle(t, db, "AAA 1111", decimal.Zero)

	w := testutil.DoJSON(t, r, http.MethodDelete, "/terminal/routes/"+itoa(vehicle.RouteID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var route models.Route
	if err := db.First(&route, vehicle.RouteID).Error; err != nil {
		t.Fatalf("route was hard-deleted: %v", err)
	}
	if route.Active {
		t.Fatal("route with vehicles should be deactivated, not deleted")
	}
}
