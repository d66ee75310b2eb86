package models

import "time"

// NotificationType is the closed set of in-app notification kinds.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an in-app message for one user, usually tied to a
// submission event.
type Notification struct {
	NotificationID      uint             `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID              uint             `gorm:"column:user_id;index" json:"user_id"`
	Title               string           `gorm:"column:title" json:"title"`
	Message             string           `gorm:"column:message" json:"message"`
	Type                NotificationType `gorm:"column:type" json:"type"`
	RelatedSubmissionID *uint            `gorm:"column:related_submission_id" json:"related_submission_id,omitempty"`
	IsRead              bool             `gorm:"column:is_read" json:"is_read"`
	CreateAt            time.Time        `gorm:"column:create_at" json:"created_at"`
	UpdateAt            *time.Time       `gorm:"column:update_at" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
