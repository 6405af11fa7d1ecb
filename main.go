package main

import (
	"log"

	"ecgdash/internal/config"
	"ecgdash/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := ui.NewApp(ui.Config{
		ArtifactDir: appConfig.Output.Dir,
		NotesFile:   appConfig.Paths.NotesFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	log.Printf("Starting ecgdash server on port %s", appConfig.Server.Port)
	log.Fatal(app.Start(":" + appConfig.Server.Port))
}
