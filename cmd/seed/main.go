package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// Seeds a verified demo account plus one post and one story for local
// development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@inkwell.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password, name, username, provider, email_verified)
		VALUES ($1, $2, 'Demo Writer', 'demowriter', 'email', TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	var postID string
	err = db.QueryRow(`
		INSERT INTO posts (author_id, title, content)
		VALUES ($1, 'Hello, Inkwell', 'A first post seeded for local development.')
		RETURNING id
	`, userID).Scan(&postID)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	fmt.Printf("seeded post: id=%s\n", postID)

	var storyID string
	err = db.QueryRow(`
		INSERT INTO stories (author_id, title, content)
		VALUES ($1, 'Quick note', 'Short-form content works too.')
		RETURNING id
	`, userID).Scan(&storyID)
	if err != nil {
		log.Fatalf("failed to seed story: %v", err)
	}
	fmt.Printf("seeded story: id=%s\n", storyID)
}
