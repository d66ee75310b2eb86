package models

import (
	"time"
)

// Role is the closed set of account roles. Authorization decisions go
// through services.Guard; controllers never compare role strings inline.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleContractor Role = "contractor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleContractor:
		return true
	}
	return false
}

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName  string     `gorm:"column:full_name" json:"full_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Role      Role       `gorm:"column:role" json:"role"`
	CompanyID *int       `gorm:"column:company_id" json:"company_id,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
