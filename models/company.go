package models

import "time"

type Company struct {
	CompanyID    int        `gorm:"primaryKey;column:company_id" json:"company_id"`
	CompanyName  string     `gorm:"column:company_name" json:"company_name"`
	ContactEmail string     `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone string     `gorm:"column:contact_phone" json:"contact_phone"`
	Address      string     `gorm:"column:address" json:"address"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}
