package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/complypoint/membership-billing/internal/app/membership/migrations"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for SPANNER_EMULATOR_HOST and friends
	_ = godotenv.Load()

	var (
		projectID  = flag.String("project", "test-project", "Spanner project ID")
		instanceID = flag.String("instance", "test-instance", "Spanner instance ID")
		databaseID = flag.String("database", "membership-db", "Spanner database ID")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Timeout for migration operations")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := migrations.Run(ctx, *projectID, *instanceID, *databaseID); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("All migrations applied successfully!")
}
