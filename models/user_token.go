package models

import "time"

// UserToken stores hashed one-time tokens, currently only password
// resets. The raw token never touches the database.
type UserToken struct {
	TokenID   int       `gorm:"primaryKey;column:token_id" json:"token_id"`
	UserID    int       `gorm:"column:user_id;index" json:"user_id"`
	TokenType string    `gorm:"column:token_type" json:"token_type"`
	Token     string    `gorm:"column:token" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expires_at"`
	IsRevoked bool      `gorm:"column:is_revoked" json:"is_revoked"`
	IPAddress string    `gorm:"column:ip_address" json:"-"`
	UserAgent string    `gorm:"column:user_agent" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}
