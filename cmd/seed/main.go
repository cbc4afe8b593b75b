package main

import (
	"log"

	"online-cinema/internal/config"
	"online-cinema/internal/database"
	"online-cinema/internal/repositories"
)

// Development seed data: a couple of identity-service mirror rows and a
// small movie catalog, priced in cents.

var seedUsers = []string{
	"alice@example.com",
	"bob@example.com",
}

var seedMovies = []struct {
	title string
	price int64
}{
	{"Heat", 999},
	{"Ran", 1299},
	{"The Conversation", 899},
	{"Stalker", 1199},
	{"In the Mood for Love", 1099},
	{"Paris, Texas", 999},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	for _, email := range seedUsers {
		_, err := db.Exec(
			"INSERT INTO users (email) VALUES ($1) ON CONFLICT (email) DO NOTHING",
			email,
		)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", email, err)
		}
	}
	log.Printf("Seeded %d users", len(seedUsers))

	movieRepo := repositories.NewMovieRepository(db.DB)
	for _, movie := range seedMovies {
		created, err := movieRepo.Create(movie.title, movie.price)
		if err != nil {
			log.Fatalf("Failed to seed movie %q: %v", movie.title, err)
		}
		log.Printf("Seeded movie %d: %s ($%.2f)", created.ID, created.Title, float64(created.Price)/100)
	}
}
