// Command migrate creates the service schema with bun and optionally seeds
// a demo admin, user and event. Intended for local development; production
// deployments use the SQL migrations under migrations/.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/crypto/bcrypt"

	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

func main() {
	seed := flag.Bool("seed", false, "seed demo data after creating tables")
	drop := flag.Bool("drop", false, "drop existing tables first")
	flag.Parse()

	ctx := context.Background()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if *drop {
		log.Println("Dropping tables...")
		dropTables(ctx, db)
	}

	log.Println("Creating tables...")
	createTables(ctx, db)

	if *seed {
		log.Println("Seeding demo data...")
		seedData(ctx, db)
	}

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{
		(*models.Booking)(nil), (*models.Location)(nil), (*models.Event)(nil),
		(*models.SessionLog)(nil), (*models.User)(nil),
	}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{
		(*models.User)(nil), (*models.SessionLog)(nil), (*models.Event)(nil),
		(*models.Booking)(nil), (*models.Location)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Changeme123!"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	admin := models.User{
		UserID:       utils.GenerateID(),
		Username:     "demoadmin",
		PasswordHash: string(hash),
		Email:        "admin@example.com",
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	user := models.User{
		UserID:       utils.GenerateID(),
		Username:     "demouser",
		PasswordHash: string(hash),
		Email:        "user@example.com",
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	if _, err := db.NewInsert().Model(&admin).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if _, err := db.NewInsert().Model(&user).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	event := models.Event{
		EventID:        utils.GenerateID(),
		EventName:      "Summer Fest",
		EventDate:      time.Now().AddDate(0, 1, 0),
		EventTime:      "18:00:00",
		EventLocation:  "Riverside Park",
		AmountRange:    150,
		TotalSeats:     100,
		AvailableSeats: 100,
		BookedSeats:    0,
		OwnerID:        admin.UserID,
		CreatedAt:      time.Now(),
	}
	if _, err := db.NewInsert().Model(&event).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed event: %v", err)
	}
}
