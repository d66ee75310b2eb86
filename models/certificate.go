package models

import "time"

type Certificate struct {
	CertificateID     int        `gorm:"primaryKey;column:certificate_id" json:"certificate_id"`
	PersonnelID       int        `gorm:"column:personnel_id;index" json:"personnel_id"`
	CertificateType   string     `gorm:"column:certificate_type" json:"certificate_type"`
	CertificateNumber string     `gorm:"column:certificate_number" json:"certificate_number"`
	IssuedBy          string     `gorm:"column:issued_by" json:"issued_by"`
	IssuedDate        *time.Time `gorm:"column:issued_date" json:"issued_date,omitempty"`
	ExpiryDate        *time.Time `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	CreateAt          *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt          *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Personnel *Personnel `gorm:"foreignKey:PersonnelID" json:"personnel,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// IsExpired reports whether the certificate has passed its expiry date.
func (c *Certificate) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// ExpiresWithin reports whether the certificate expires within d from now.
func (c *Certificate) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiryDate == nil {
		return false
	}
	return c.ExpiryDate.After(now) && c.ExpiryDate.Before(now.Add(d))
}
