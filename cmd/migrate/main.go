package main

import (
	"flag"
	"log"

	"github.com/jhwlcrzzz/attendance-dashboard/app/config"
	"github.com/jhwlcrzzz/attendance-dashboard/app/database"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log.Println("Starting archive migration...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if !cfg.Archive.Enabled {
		log.Fatal("Archive is disabled; enable archive.enabled or set DATABASE_URL")
	}

	db, err := config.InitDB(cfg.Archive)
	if err != nil {
		log.Fatal("Failed to connect archive database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Archive migration completed successfully!")
}
