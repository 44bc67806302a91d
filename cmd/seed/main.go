package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// Development seeder: creates the default accounts and, optionally, a
// demo fleet with a few months of deposit history.
func main() {
	clear := flag.Bool("clear", false, "wipe terminal data before seeding")
	demo := flag.Bool("demo", true, "seed a demo fleet and deposit history")
	months := flag.Int("months", 3, "months of back-dated deposit history")
	flag.Parse()

	config.InitDB()
	db := config.DB

	if *clear {
		log.Println("Clearing terminal data")
		for _, m := range []interface{}{
			&models.Profit{}, &models.Transaction{}, &models.EntryLog{},
			&models.Deposit{}, &models.Wallet{}, &models.Vehicle{},
			&models.Driver{}, &models.Route{},
		} {
			if err := db.Unscoped().Where("1 = 1").Delete(m).Error; err != nil {
				log.Fatalf("clear failed: %v", err)
			}
		}
	}

	seedUsers(db)
	if _, err := models.GetSettings(db); err != nil {
		log.Fatalf("settings init failed: %v", err)
	}

	if *demo {
		routes := seedRoutes(db)
		vehicles := seedFleet(db, routes)
		seedDeposits(db, vehicles, *months)
	}

	log.Println("Seeding complete")
}

func seedUsers(db *gorm.DB) {
	users := []struct {
		username, password, first, last, role string
	}{
		{"admin", "admin123", "System", "Administrator", models.RoleAdmin},
		{"staff", "staff123", "Terminal", "Staff", models.RoleStaffAdmin},
		{"treasurer", "treasurer123", "Route", "Treasurer", models.RoleTreasurer},
	}
	for _, u := range users {
		var existing models.User
		if err := db.Where("username = ?", u.username).First(&existing).Error; err == nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash failed: %v", err)
		}
		user := models.User{
			Username:  u.username,
			Password:  string(hash),
			FirstName: u.first,
			LastName:  u.last,
			Role:      u.role,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("user seed failed: %v", err)
		}
		log.Printf("Created %s account %q", u.role, u.username)
	}
}

func seedRoutes(db *gorm.DB) []models.Route {
	defs := []models.Route{
		{Name: "City Proper Loop", Origin: "Terminal", Destination: "City Proper", BaseFare: decimal.NewFromInt(15)},
		{Name: "Northbound Highway", Origin: "Terminal", Destination: "North District", BaseFare: decimal.NewFromInt(25)},
		{Name: "Coastal Road", Origin: "Terminal", Destination: "Fishport", BaseFare: decimal.NewFromInt(20)},
	}
	routes := make([]models.Route, 0, len(defs))
	for _, def := range defs {
		var route models.Route
		if err := db.Where(models.Route{Name: def.Name}).
			Attrs(def).
			FirstOrCreate(&route).Error; err != nil {
			log.Fatalf("route seed failed: %v", err)
		}
		routes = append(routes, route)
	}
	return routes
}

func seedFleet(db *gorm.DB, routes []models.Route) []models.Vehicle {
	type fleetDef struct {
		first, last, license, plate, vtype string
		seats                              int
	}
	defs := []fleetDef{
		{"Ramon", "Dela Cruz", "N01-11-223344", "ABC 1234", "jeepney", 20},
		{"Elena", "Santos", "N02-22-334455", "DEF 5678", "van", 14},
		{"Marco", "Reyes", "N03-33-445566", "GHI 9012", "jeepney", 22},
		{"Luis", "Garcia", "N04-44-556677", "JKL 3456", "bus", 45},
		{"Teresa", "Lim", "N05-55-667788", "MNO 7890", "van", 14},
	}

	vehicles := make([]models.Vehicle, 0, len(defs))
	for i, def := range defs {
		var driver models.Driver
		err := db.Where("license_number = ?", def.license).First(&driver).Error
		if err != nil {
			driver = models.Driver{
				FirstName:     def.first,
				LastName:      def.last,
				MobileNumber:  fmt.Sprintf("0917%07d", rand.Intn(10000000)),
				LicenseNumber: def.license,
				LicenseExpiry: time.Now().AddDate(2, 0, 0),
			}
			if err := db.Create(&driver).Error; err != nil {
				log.Fatalf("driver seed failed: %v", err)
			}
		}

		var vehicle models.Vehicle
		err = db.Where("license_plate = ?", def.plate).First(&vehicle).Error
		if err == nil {
			vehicles = append(vehicles, vehicle)
			continue
		}

		vehicle = models.Vehicle{
			VehicleType:        def.vtype,
			OwnershipType:      "owned",
			LicensePlate:       def.plate,
			CRNumber:           fmt.Sprintf("CR-%06d", rand.Intn(1000000)),
			ORNumber:           fmt.Sprintf("OR-%06d", rand.Intn(1000000)),
			VINNumber:          fmt.Sprintf("VIN%010d", rand.Intn(1000000000)),
			YearModel:          2015 + rand.Intn(9),
			RegistrationNumber: fmt.Sprintf("REG-%06d", rand.Intn(1000000)),
			RegistrationExpiry: time.Now().AddDate(1, 0, 0),
			SeatCapacity:       def.seats,
			Status:             models.VehicleIdle,
			AssignedDriverID:   driver.ID,
			RouteID:            routes[i%len(routes)].ID,
		}
		if err := db.Create(&vehicle).Error; err != nil {
			log.Fatalf("vehicle seed failed: %v", err)
		}
		if err := db.Model(&vehicle).
			UpdateColumn("qr_value", models.MakeQRValue(vehicle.ID, vehicle.LicensePlate)).Error; err != nil {
			log.Fatalf("qr seed failed: %v", err)
		}
		wallet := models.Wallet{VehicleID: vehicle.ID, Balance: decimal.Zero}
		if err := db.Create(&wallet).Error; err != nil {
			log.Fatalf("wallet seed failed: %v", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles
}

// seedDeposits writes back-dated successful deposits so the reports have
// several months of history to navigate.
func seedDeposits(db *gorm.DB, vehicles []models.Vehicle, months int) {
	var staff models.User
	if err := db.Where("role = ?", models.RoleStaffAdmin).First(&staff).Error; err != nil {
		log.Fatalf("no staff account to attribute deposits to: %v", err)
	}

	now := time.Now()
	created := 0
	for m := 0; m < months; m++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 9, 0, 0, 0, time.Local).AddDate(0, -m, 0)
		for _, vehicle := range vehicles {
			var wallet models.Wallet
			if err := db.Where("vehicle_id = ?", vehicle.ID).First(&wallet).Error; err != nil {
				continue
			}
			n := 2 + rand.Intn(4)
			for i := 0; i < n; i++ {
				amount := decimal.NewFromInt(int64(100 + rand.Intn(9)*50))
				when := monthStart.AddDate(0, 0, rand.Intn(27))
				if when.After(now) {
					continue
				}
				deposit := models.Deposit{
					WalletID:        wallet.ID,
					Amount:          amount,
					ReferenceNumber: uuid.NewString(),
					Status:          models.DepositSuccessful,
					PaymentMethod:   models.PaymentCash,
					CreatedByID:     staff.ID,
				}
				if err := db.Create(&deposit).Error; err != nil {
					log.Fatalf("deposit seed failed: %v", err)
				}
				// back-date after insert so GORM does not overwrite it
				db.Model(&deposit).UpdateColumn("created_at", when)
				db.Model(&wallet).UpdateColumn("balance", gorm.Expr("balance + ?", amount))
				created++
			}
		}
	}
	log.Printf("Seeded %d deposits across %d months", created, months)
}
