package main

import (
	"log"
	"os"
	"time"

	"crowdfund-be/internal/model"
	"crowdfund-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding admin account and demo project...")
	seedAdmin(db)
	seedDemoProject(db)
	color.Green("Seeding completed.")
}

func seedAdmin(db *gorm.DB) {
	email := getEnvDefault("SEED_ADMIN_EMAIL", "admin@crowdfund.local")
	password := getEnvDefault("SEED_ADMIN_PASSWORD", "admin-secret")

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("Admin %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Error: Failed to hash admin password: %v", err)
		return
	}
	hashStr := string(hash)

	admin := model.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     "Platform Admin",
		PasswordHash: &hashStr,
		Role:         "admin",
		Status:       "active",
	}
	if err := db.Create(&admin).Error; err != nil {
		color.Red("Error: Failed to create admin: %v", err)
		return
	}
	color.Green("Created admin %s", email)
}

func seedDemoProject(db *gorm.DB) {
	var admin model.User
	if err := db.Where("role = ?", "admin").First(&admin).Error; err != nil {
		color.Yellow("No admin found, skipping demo project")
		return
	}

	var count int64
	db.Model(&model.Project{}).Count(&count)
	if count > 0 {
		color.Yellow("Projects already exist, skipping demo project")
		return
	}

	project := model.Project{
		Id:           uuid.New(),
		CreatorId:    admin.Id,
		Title:        "Community Well",
		Description:  "Clean water access for the village of Sukamaju.",
		TargetAmount: 50000000,
		Status:       "active",
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&project).Error; err != nil {
		color.Red("Error: Failed to create demo project: %v", err)
		return
	}
	color.Green("Created demo project %q", project.Title)
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
