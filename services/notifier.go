package services

import (
	"errors"
	"fmt"
	"log"

	"cert-management-api/config"
	"cert-management-api/models"

	"gorm.io/gorm"
)

// Notifier persists workflow notifications and, when SMTP is
// configured, mails the recipient a copy. Failures are logged and never
// propagated: a lost notification must not undo a state transition.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Emit stores the notification row and fires the email copy in the
// background.
func (n *Notifier) Emit(notification models.Notification) {
	if n.db == nil {
		return
	}

	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("notifier: failed to store notification for user %d: %v", notification.UserID, err)
		return
	}

	if !config.MailConfigured() {
		return
	}

	go func(notification models.Notification) {
		if err := n.sendEmail(notification); err != nil {
			log.Printf("notifier: failed to email notification %d: %v", notification.NotificationID, err)
		}
	}(notification)
}

func (n *Notifier) sendEmail(notification models.Notification) error {
	var recipient models.User
	if err := n.db.Where("user_id = ? AND delete_at IS NULL", notification.UserID).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if recipient.Email == "" {
		return nil
	}

	body := fmt.Sprintf("<p>%s</p>", notification.Message)
	return config.SendMail([]string{recipient.Email}, notification.Title, body)
}
