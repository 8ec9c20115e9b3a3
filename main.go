// @title Lernplan Dashboard API
// @version 1.0
// @description Backend für das persönliche Lernplan-Dashboard: Tagesaufgaben, Wochenplan, Klausur-Countdown und Gewohnheiten.

// @contact.name API-Support

// @license.name MIT

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"
	"path/filepath"

	"lernplan_backend/internal/app"
	"lernplan_backend/internal/config"
	"lernplan_backend/pkg/configwatcher"
	"lernplan_backend/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Kommandozeilenargumente
	configPath := flag.String("config", "configs", "Verzeichnis mit config.yaml")
	watchConfig := flag.Bool("watch-config", false, "config.yaml beobachten und zur Laufzeit neu laden")
	flag.Parse()

	// .env ist optional; Token wie GITHUB_TOKEN kommen typischerweise daher
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watchConfig {
		go configwatcher.WatchConfig(filepath.Join(*configPath, "config.yaml"), application.ApplyConfig)
	}

	application.Run()
}
