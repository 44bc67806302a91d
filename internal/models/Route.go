package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Route represents a service path out of the terminal. Vehicles are
// assigned to exactly one route; the TV display groups the queue by it.
type Route struct {
	gorm.Model

	Name        string          `json:"name" gorm:"uniqueIndex" binding:"required"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	BaseFare    decimal.Decimal `json:"base_fare" gorm:"type:numeric(12,2)"`
	Active      bool            `json:"active" gorm:"default:true"`

	// Optional path geometry stored as WKB (LINESTRING, SRID 4326).
	// Handlers accept and emit GeoJSON.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	Vehicles []Vehicle `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicles,omitempty"`
}
