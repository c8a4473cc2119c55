package main

import (
	"flag"
	"log"

	"hunter-market/internal/config"
	"hunter-market/internal/crawler"
	"hunter-market/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	pages := flag.Int("pages", 5, "number of board pages to crawl")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	cr := crawler.New(db, cfg.EverytimeBoardID, cfg.EverytimeCookie)
	saved, err := cr.Run(*pages)
	if err != nil {
		log.Fatal("Crawl failed:", err)
	}
	log.Printf("Crawl finished: %d new posts saved", saved)
}
