// Command seed_data populates the Authorization Server's demo client and
// user, grounded on the teacher repository's sql/seed_data.go (tx.Exec + ON
// CONFLICT DO NOTHING). Of the four tables schema.sql declares, it writes
// only clients and users.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/johnbasrai/identityplane/internal/authserver/pwhash"
	"github.com/johnbasrai/identityplane/internal/authserver/store"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("cannot connect to database:", err)
	}

	if err := seedData(db); err != nil {
		log.Fatal("error seeding data:", err)
	}

	fmt.Println("Seeded demo client and user")
}

func seedData(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			tx.Commit()
		}
	}()

	_, err = tx.Exec(`
		INSERT INTO clients (client_id, client_secret, redirect_uri)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id) DO NOTHING`,
		store.DemoClientID, store.DemoClientSecret, store.DemoRedirectURI)
	if err != nil {
		return fmt.Errorf("error inserting demo client: %w", err)
	}

	hash, err := pwhash.Hash(store.DemoPassword)
	if err != nil {
		return fmt.Errorf("error hashing demo password: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO users (user_id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		store.DemoUserID, store.DemoUsername, hash)
	if err != nil {
		return fmt.Errorf("error inserting demo user: %w", err)
	}

	return nil
}
