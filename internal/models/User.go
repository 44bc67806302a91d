package models

import "gorm.io/gorm"

// Terminal back-office roles. Role decides which dashboards and
// actions a user can reach.
const (
	RoleAdmin      = "admin"
	RoleStaffAdmin = "staff_admin"
	RoleTreasurer  = "treasurer"
)

type User struct {
	gorm.Model
	Username  string `json:"username" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"` // "admin", "staff_admin", "treasurer"
}

// FullName joins first and last name for receipts and approval trails.
func (u User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
