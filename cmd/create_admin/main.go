package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ajei/internal/config"
	"ajei/internal/database"
	"ajei/internal/services"
	apperrors "ajei/pkg/errors"
)

func main() {
	username := flag.String("username", "admin", "operator username")
	email := flag.String("email", "admin@ajei.sa", "operator email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "operator password (defaults to $ADMIN_PASSWORD)")
	superuser := flag.Bool("superuser", true, "grant admin rights in addition to dashboard access")
	flag.Parse()

	if *password == "" {
		log.Fatal("A password is required: pass -password or set ADMIN_PASSWORD")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()
	defer func() { _ = database.Close(db) }()

	auth := services.NewAuthService(db, &cfg.Auth)
	user, err := auth.CreateUser(context.Background(), *username, *email, *password, *superuser)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeBadRequest {
			fmt.Printf("User %q already exists!\n", *username)
			return
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println("Operator created successfully!")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Println("Log in at /accounts/login/ to open the dashboard.")
}
