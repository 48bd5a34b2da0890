package discord

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/application"
	"albionbot/internal/config"
	"albionbot/internal/ports/output"
)

// Bot is the Discord adapter.
type Bot struct {
	session   *discordgo.Session
	config    *config.Config
	handler   *Handler
	scheduler *application.Scheduler
}

// NewBot creates a Bot and wires ports: output adapters -> application
// (use cases) -> handler. The registry is expected to be pre-loaded with
// the persisted active raids.
func NewBot(
	cfg *config.Config,
	registry *application.Registry,
	templateRepo output.TemplateRepository,
	raidRepo output.RaidRepository,
	translator output.T,
) *Bot {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatal("❌ Erreur lors de la création de la session Discord:", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	effects := NewLifecycleEffects(s, cfg)
	lifecycle := application.NewLifecycle(registry, raidRepo, effects, translator,
		time.Duration(cfg.VoiceCheckAfterMinutes)*time.Minute)
	scheduler := application.NewScheduler(registry, lifecycle,
		time.Duration(cfg.SchedTickSeconds)*time.Second)

	raidUC := application.NewRaidService(registry, raidRepo, templateRepo, lifecycle)
	signupUC := application.NewSignupService(registry, raidRepo, effects, translator)
	templateUC := application.NewTemplateService(templateRepo)

	handler := NewHandler(raidUC, signupUC, templateUC, translator, cfg)

	bot := &Bot{
		session:   s,
		config:    cfg,
		handler:   handler,
		scheduler: scheduler,
	}
	bot.setupHandlers()
	return bot
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleInteraction)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "raid":
			b.handler.HandleRaidCommand(s, i)
		case "comp":
			b.handler.HandleCompCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if customID == "comp_create_modal" {
			b.handler.HandleCompCreateModal(s, i)
		} else if strings.HasPrefix(customID, "raid_ip_modal_") {
			b.handler.HandleIPModal(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		if strings.HasPrefix(customID, "raid_role_select_") {
			b.handler.HandleRoleSelect(s, i)
		} else if strings.HasPrefix(customID, "btn_raid_leave_") {
			b.handler.HandleLeave(s, i)
		} else if strings.HasPrefix(customID, "btn_raid_absent_") {
			b.handler.HandleAbsent(s, i)
		} else if strings.HasPrefix(customID, "btn_raid_notify_") {
			b.handler.HandleNotify(s, i)
		}
	}
}

// Start runs the bot until interrupted. The scheduler ticks in the
// background and stops with the session.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	defer b.session.Close()

	for _, cmd := range commandDefinitions(b.config) {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			log.Printf("⚠️ Erreur lors de l'enregistrement de la commande %s: %v", cmd.Name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.scheduler.Run(ctx)

	fmt.Println("🤖 Bot en ligne ! Appuyez sur CTRL+C pour quitter.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}

func commandDefinitions(cfg *config.Config) []*discordgo.ApplicationCommand {
	var (
		prepMin, prepMax       float64 = 0, 120
		cleanupMin, cleanupMax float64 = 0, 240
	)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "raid",
			Description: "Gestion des raids",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Ouvrir un raid depuis un template",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "template", Description: "Template", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "start", Description: "Date/heure Paris: YYYY-MM-DD HH:MM", Required: true},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "voice_channel", Description: "Vocal du raid", ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice}},
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Titre (optionnel)"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Description (optionnel)"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "prep_minutes", Description: fmt.Sprintf("Rôle temp X min avant (défaut %d)", cfg.DefaultPrepMinutes), MinValue: &prepMin, MaxValue: prepMax},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "cleanup_minutes", Description: fmt.Sprintf("Cleanup X min après (défaut %d)", cfg.DefaultCleanupMinutes), MinValue: &cleanupMin, MaxValue: cleanupMax},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lister les raids en cours",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Fermer un raid immédiatement",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "raid_id", Description: "Raid ID", Required: true},
					},
				},
			},
		},
		{
			Name:        "comp",
			Description: "Gestion des templates de compo",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Créer ou remplacer un template",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lister les templates",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Supprimer un template",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Nom du template", Required: true},
					},
				},
			},
		},
	}
}
