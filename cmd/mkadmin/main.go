// Command mkadmin grants or revokes the admin flag for an existing user.
// It talks to the database directly; the HTTP API has no route for this.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/notehub-app/notehub/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
	username := flag.String("user", "", "username to modify (required)")
	revoke := flag.Bool("revoke", false, "revoke instead of grant")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "mkadmin: -user is required")
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mkadmin: connect: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.NewUserRepo(db).SetAdmin(ctx, *username, !*revoke); err != nil {
		fmt.Fprintf(os.Stderr, "mkadmin: %v\n", err)
		os.Exit(1)
	}
	if *revoke {
		fmt.Printf("revoked admin from %q\n", *username)
	} else {
		fmt.Printf("granted admin to %q\n", *username)
	}
}
