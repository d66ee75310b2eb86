package models

import "time"

type Personnel struct {
	PersonnelID int        `gorm:"primaryKey;column:personnel_id" json:"personnel_id"`
	CompanyID   int        `gorm:"column:company_id;index" json:"company_id"`
	FullName    string     `gorm:"column:full_name" json:"full_name"`
	Position    string     `gorm:"column:position" json:"position"`
	Email       string     `gorm:"column:email" json:"email"`
	Phone       string     `gorm:"column:phone" json:"phone"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Company      *Company      `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Certificates []Certificate `gorm:"foreignKey:PersonnelID" json:"certificates,omitempty"`
}

func (Personnel) TableName() string {
	return "personnel"
}
