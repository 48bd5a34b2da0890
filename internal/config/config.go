package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Token       string
	GuildID     string
	DatabaseURL string

	MigrationsPath string

	RaidManagerRoleID      string
	RaidRequireManageGuild bool

	SchedTickSeconds       int
	DefaultPrepMinutes     int
	DefaultCleanupMinutes  int
	VoiceCheckAfterMinutes int
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{
		Token:                  os.Getenv("TOKEN"),
		GuildID:                os.Getenv("GUILD_ID"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		MigrationsPath:         envOr("MIGRATIONS_PATH", "internal/infrastructure/database/migrations"),
		RaidManagerRoleID:      os.Getenv("RAID_MANAGER_ROLE_ID"),
		RaidRequireManageGuild: envBool("RAID_REQUIRE_MANAGE_GUILD", true),
		SchedTickSeconds:       envInt("SCHED_TICK_SECONDS", 15),
		DefaultPrepMinutes:     envInt("DEFAULT_PREP_MINUTES", 10),
		DefaultCleanupMinutes:  envInt("DEFAULT_CLEANUP_MINUTES", 30),
		VoiceCheckAfterMinutes: envInt("VOICE_CHECK_AFTER_MINUTES", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if c.RaidManagerRoleID != "" {
		for _, r := range c.RaidManagerRoleID {
			if r < '0' || r > '9' {
				return fmt.Errorf("config: RAID_MANAGER_ROLE_ID doit être un ID de rôle Discord (chiffres uniquement)")
			}
		}
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
		c.DatabaseURL = "postgres://localhost:5432/albionbot?sslmode=disable"
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	if c.SchedTickSeconds < 1 {
		return fmt.Errorf("config: SCHED_TICK_SECONDS doit être >= 1")
	}
	if c.DefaultPrepMinutes < 0 || c.DefaultCleanupMinutes < 0 || c.VoiceCheckAfterMinutes < 0 {
		return fmt.Errorf("config: les délais (minutes) ne peuvent pas être négatifs")
	}

	return nil
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}
