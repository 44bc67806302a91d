package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rdfs_terminal/internal/models"
)

// SeedVehicle creates a driver, a vehicle on a route and a wallet with
// the given balance. Plates must be unique per test database.
func SeedVehicle(t *testing.T, db *gorm.DB, plate string, balance decimal.Decimal) models.Vehicle {
	t.Helper()

	var route models.Route
	if err := db.Where(models.Route{Name: "Test Loop"}).
		Attrs(models.Route{
			Origin:      "Terminal",
			Destination: "City",
			BaseFare:    decimal.NewFromInt(15),
			Active:      true,
		}).
		FirstOrCreate(&route).Error; err != nil {
		t.Fatalf("seed route: %v", err)
	}

	driver := models.Driver{
		FirstName:     "Driver",
		LastName:      plate,
		MobileNumber:  "09170000000",
		LicenseNumber: fmt.Sprintf("LIC-%s", plate),
		LicenseExpiry: time.Now().AddDate(1, 0, 0),
	}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}

	vehicle := models.Vehicle{
		VehicleType:      "jeepney",
		OwnershipType:    "owned",
		LicensePlate:     plate,
		YearModel:        2020,
		SeatCapacity:     20,
		Status:           models.VehicleIdle,
		AssignedDriverID: driver.ID,
		RouteID:          route.ID,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	if err := db.Model(&vehicle).
		UpdateColumn("qr_value", models.MakeQRValue(vehicle.ID, vehicle.LicensePlate)).Error; err != nil {
		t.Fatalf("seed qr value: %v", err)
	}
	vehicle.QRValue = models.MakeQRValue(vehicle.ID, vehicle.LicensePlate)

	wallet := models.Wallet{VehicleID: vehicle.ID, Balance: balance}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	vehicle.Wallet = &wallet
	return vehicle
}

// WalletBalance reloads a vehicle's wallet balance.
func WalletBalance(t *testing.T, db *gorm.DB, vehicleID uint) decimal.Decimal {
	t.Helper()
	var wallet models.Wallet
	if err := db.Where("vehicle_id = ?", vehicleID).First(&wallet).Error; err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return wallet.Balance
}
