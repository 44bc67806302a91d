// internal/models/driver.go
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	DriverCode    string    `json:"driver_code" gorm:"uniqueIndex"` // assigned on create, "DRV-<id>"
	FirstName     string    `json:"first_name"`
	MiddleName    string    `json:"middle_name"`
	LastName      string    `json:"last_name"`
	Suffix        string    `json:"suffix"`
	MobileNumber  string    `json:"mobile_number"`
	Email         string    `json:"email"`
	LicenseNumber string    `json:"license_number" gorm:"uniqueIndex"`
	LicenseExpiry time.Time `json:"license_expiry"`

	// A driver is assigned to at most one vehicle.
	Vehicle *Vehicle `gorm:"foreignKey:AssignedDriverID" json:"vehicle,omitempty"`
}

func (d Driver) FullName() string {
	name := d.FirstName + " " + d.LastName
	if d.Suffix != "" {
		name += " " + d.Suffix
	}
	return name
}

// AfterCreate assigns the human-readable driver code once the row ID exists.
func (d *Driver) AfterCreate(tx *gorm.DB) error {
	if d.DriverCode != "" {
		return nil
	}
	d.DriverCode = fmt.Sprintf("DRV-%04d", d.ID)
	return tx.Model(d).UpdateColumn("driver_code", d.DriverCode).Error
}
