// Command import_sources loads feed subscriptions from a YAML file into the
// data_sources table, creating missing identifiers and updating existing
// ones. Reconciliation itself never creates or deletes sources; this tool is
// the only write path for them besides the run tracker.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/northlane/feedsync/internal/config"
	"github.com/northlane/feedsync/internal/database"
	"github.com/northlane/feedsync/internal/models"
	"gopkg.in/yaml.v3"
)

type sourceFile struct {
	Sources []sourceEntry `yaml:"sources"`
}

type sourceEntry struct {
	Identifier string `yaml:"identifier"`
	FeedURL    string `yaml:"feed_url"`
	FeedType   string `yaml:"feed_type"`
	Status     string `yaml:"status"`
}

func main() {
	file := flag.String("file", "sources.yaml", "YAML file with feed sources")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	var parsed sourceFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	if len(parsed.Sources) == 0 {
		log.Fatalf("No sources found in %s", *file)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.DataSource{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	created, updated := 0, 0
	for _, entry := range parsed.Sources {
		if entry.Identifier == "" || entry.FeedURL == "" {
			log.Printf("⏭️  Skipping entry without identifier or feed_url")
			continue
		}

		feedType := models.FeedType(entry.FeedType)
		if feedType == "" {
			feedType = models.FeedTypeProduct
		}
		status := models.DataSourceStatus(entry.Status)
		if status == "" {
			status = models.DataSourceActive
		}

		var existing models.DataSource
		err := db.Where("identifier = ?", entry.Identifier).Take(&existing).Error
		if err == nil {
			err = db.Model(&existing).Updates(map[string]any{
				"feed_url":  entry.FeedURL,
				"feed_type": feedType,
				"status":    status,
			}).Error
			if err != nil {
				log.Fatalf("Failed to update source %s: %v", entry.Identifier, err)
			}
			updated++
			continue
		}

		source := models.DataSource{
			Identifier: entry.Identifier,
			FeedURL:    entry.FeedURL,
			FeedType:   feedType,
			Status:     status,
		}
		if err := db.Create(&source).Error; err != nil {
			log.Fatalf("Failed to create source %s: %v", entry.Identifier, err)
		}
		created++
	}

	log.Printf("✅ Import complete: %d created, %d updated", created, updated)
}
