package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/models"
)

func main() {
	godotenv.Load()

	email := flag.String("email", "", "Email address of the profile to promote to admin")
	revoke := flag.Bool("revoke", false, "Revoke admin privileges instead of granting")
	flag.Parse()

	if *email == "" {
		fmt.Println("Usage: go run cmd/promote-admin/main.go -email=user@example.com")
		fmt.Println("       go run cmd/promote-admin/main.go -email=user@example.com -revoke")
		return
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	var profile models.Profile
	result := database.DB.Where("LOWER(email) = ?", strings.ToLower(*email)).First(&profile)
	if result.Error != nil {
		fmt.Printf("Profile not found: %s\n", *email)
		return
	}

	if *revoke {
		if !profile.IsAdmin {
			fmt.Printf("Profile %s is not an admin\n", profile.Email)
			return
		}
		profile.IsAdmin = false
		if err := database.DB.Save(&profile).Error; err != nil {
			log.Fatalf("Failed to revoke admin privileges: %v", err)
		}
		fmt.Printf("Admin privileges revoked from %s\n", profile.Email)
		return
	}

	if profile.IsAdmin {
		fmt.Printf("Profile %s is already an admin\n", profile.Email)
		return
	}
	profile.IsAdmin = true
	if err := database.DB.Save(&profile).Error; err != nil {
		log.Fatalf("Failed to grant admin privileges: %v", err)
	}
	fmt.Printf("Admin privileges granted to %s\n", profile.Email)
}
