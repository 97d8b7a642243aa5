// Command seed_demo creates a demo admin user and a pair of feed sources so
// a fresh local instance has something to reconcile.
package main

import (
	"log"

	"github.com/northlane/feedsync/internal/config"
	"github.com/northlane/feedsync/internal/database"
	"github.com/northlane/feedsync/internal/models"
	"github.com/northlane/feedsync/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	err = db.AutoMigrate(
		&models.AdminUser{},
		&models.DataSource{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ExternalProductMapping{},
		&models.SyncRun{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Demo admin (idempotent)
	var admin models.AdminUser
	if err := db.Where("email = ?", "admin@localhost").Take(&admin).Error; err != nil {
		hash, err := utils.HashPassword("admin")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		admin = models.AdminUser{
			Email:        "admin@localhost",
			PasswordHash: hash,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("✅ Created admin user admin@localhost (password: admin)")
	} else {
		log.Println("ℹ️  Admin user already exists")
	}

	demoSources := []models.DataSource{
		{
			Identifier: "demo-json-feed",
			FeedURL:    "https://dummyjson.com/products",
			FeedType:   models.FeedTypeProduct,
			Status:     models.DataSourceActive,
		},
		{
			Identifier: "demo-xml-feed",
			FeedURL:    "https://www.w3schools.com/xml/simple.xml",
			FeedType:   models.FeedTypeProduct,
			Status:     models.DataSourceInactive,
		},
	}

	for _, source := range demoSources {
		var existing models.DataSource
		if err := db.Where("identifier = ?", source.Identifier).Take(&existing).Error; err == nil {
			log.Printf("ℹ️  Source %s already exists", source.Identifier)
			continue
		}
		if err := db.Create(&source).Error; err != nil {
			log.Fatalf("Failed to create source %s: %v", source.Identifier, err)
		}
		log.Printf("✅ Created source %s", source.Identifier)
	}

	log.Println("✅ Demo seed complete")
}
