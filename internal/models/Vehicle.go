// internal/models/vehicle.go
package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Vehicle terminal statuses.
const (
	VehicleIdle       = "idle"
	VehicleInTerminal = "in_terminal"
	VehicleDeparted   = "departed"
)

type Vehicle struct {
	gorm.Model
	VehicleName   string `json:"vehicle_name"`
	VehicleType   string `json:"vehicle_type"`   // "jeepney", "van", "bus"
	OwnershipType string `json:"ownership_type"` // "owned", "leased"
	LicensePlate  string `json:"license_plate" gorm:"uniqueIndex"`

	CRNumber           string    `json:"cr_number"`
	ORNumber           string    `json:"or_number"`
	VINNumber          string    `json:"vin_number"`
	YearModel          int       `json:"year_model"`
	RegistrationNumber string    `json:"registration_number"`
	RegistrationExpiry time.Time `json:"registration_expiry"`
	SeatCapacity       int       `json:"seat_capacity"`

	Status string `json:"status" gorm:"default:idle"`

	// QRValue is the scannable identifier printed on the vehicle's QR
	// sticker; the entry/exit endpoints look vehicles up by it.
	QRValue string `json:"qr_value" gorm:"uniqueIndex"`

	AssignedDriverID uint   `json:"assigned_driver_id" gorm:"uniqueIndex"`
	AssignedDriver   Driver `gorm:"foreignKey:AssignedDriverID" json:"assigned_driver,omitempty"`

	RouteID uint  `json:"route_id"`
	Route   Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`

	Wallet *Wallet `gorm:"foreignKey:VehicleID" json:"wallet,omitempty"`
}

// MakeQRValue builds the canonical QR payload for a vehicle.
func MakeQRValue(id uint, plate string) string {
	v := fmt.Sprintf("VEH-%d-%s", id, plate)
	return strings.ToUpper(strings.ReplaceAll(v, " ", "-"))
}
