// cmd/hash-password/main.go
//
// Prints the bcrypt hash of an admin password and, with -save, stores it for
// the given username in the admin relation.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"lppm-form-api/config"
	"lppm-form-api/models"
	"lppm-form-api/utils"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

func main() {
	username := flag.String("username", "admin", "admin username to provision")
	password := flag.String("password", "", "plain password (defaults to $ADMIN_PASS)")
	save := flag.Bool("save", false, "upsert the hash into the admin table")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	plain := strings.TrimSpace(*password)
	if plain == "" {
		plain = strings.TrimSpace(os.Getenv("ADMIN_PASS"))
	}
	if plain == "" {
		log.Fatal("Password is required: pass -password or set ADMIN_PASS")
	}

	hashed, err := utils.HashPassword(plain)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	fmt.Println(hashed)

	if !*save {
		return
	}

	cfg := config.Load()
	if err := config.InitDB(cfg); err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	if err := config.DB.AutoMigrate(&models.Admin{}); err != nil {
		log.Fatal("Failed to migrate admin table:", err)
	}

	admin := models.Admin{Username: strings.TrimSpace(*username), PasswordHash: hashed}
	err = config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&admin).Error
	if err != nil {
		log.Fatalf("Failed to save admin %s: %v", admin.Username, err)
	}
	log.Printf("Successfully stored password for admin %s", admin.Username)
}
