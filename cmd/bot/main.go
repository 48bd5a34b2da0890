package main

import (
	"context"
	"log"
	"os"

	"albionbot/internal/adapters/discord"
	"albionbot/internal/application"
	"albionbot/internal/config"
	"albionbot/internal/infrastructure/database"
	"albionbot/internal/infrastructure/i18n"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur de configuration: %v", err)
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Erreur lors des migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Erreur lors de l'initialisation de la base de données: %v", err)
	}
	defer pool.Close()

	templateRepo := database.NewTemplateRepository(pool)
	raidRepo := database.NewRaidRepository(pool)
	translator := i18n.NewTranslator("fr")

	registry := application.NewRegistry()
	if err := registry.Load(ctx, raidRepo); err != nil {
		log.Fatalf("❌ Erreur lors du chargement des raids actifs: %v", err)
	}

	bot := discord.NewBot(cfg, registry, templateRepo, raidRepo, translator)
	if err := bot.Start(); err != nil {
		log.Printf("❌ Erreur lors du démarrage du bot: %v", err)
		os.Exit(1)
	}
}
