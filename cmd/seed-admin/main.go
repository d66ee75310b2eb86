// Bootstrap script to create the first superadmin account
// cmd/seed-admin/main.go
package main

import (
	"flag"
	"log"
	"time"

	"cert-management-api/config"
	"cert-management-api/models"
	"cert-management-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	name := flag.String("name", "Administrator", "full name of the account")
	email := flag.String("email", "", "login email (required)")
	password := flag.String("password", "", "initial password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Both -email and -password are required")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var existing models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", *email).First(&existing).Error; err == nil {
		log.Fatalf("User %s already exists", *email)
	}

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	user := models.User{
		FullName: *name,
		Email:    *email,
		Password: hashed,
		Role:     models.RoleSuperadmin,
		CreateAt: &now,
		UpdateAt: &now,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create superadmin:", err)
	}

	log.Printf("Superadmin %s created (user_id=%d)\n", user.Email, user.UserID)
}
