package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/storefront/users"
)

const (
	testEmail    = "test-admin@storefront.dev"
	testPassword = "test-admin-password"
)

func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI not set")
	}

	database := os.Getenv("MONGODB_DATABASE")
	if database == "" {
		database = "storefront"
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer client.Disconnect(ctx) //nolint:errcheck

	model, err := odm.NewRegistry(client.Database(database)).Register(users.Schema())
	if err != nil {
		log.Fatalf("Failed to register user model: %v", err)
	}

	userRepo := users.NewRepository(model, nil)

	// create or find the test admin
	user, err := userRepo.FindByEmail(ctx, testEmail, false)
	if errors.IsStatus(err, http.StatusNotFound) {
		user, err = userRepo.Create(ctx, users.CreateUserRequest{
			Name:     "Test Admin",
			Email:    testEmail,
			Password: testPassword,
			Role:     users.RoleAdmin,
		})
		if err != nil {
			log.Fatalf("Failed to create test user: %v", err)
		}

		fmt.Printf("Created test admin: %s (ID: %s)\n", testEmail, user.ID.Hex())
	} else if err != nil {
		log.Fatalf("Failed to look up test user: %v", err)
	} else {
		fmt.Printf("Using existing test admin (ID: %s)\n", user.ID.Hex())
	}

	// generate JWT token
	token, err := auth.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\nTest JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
