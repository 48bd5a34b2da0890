package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/ports/input"
	pkgdiscord "albionbot/pkg/discord"
)

const listedRaidsMax = 40

// replyError renders a domain error through the locale catalogs; errors
// without a domain code pass through verbatim.
func (h *Handler) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if key := pkgdiscord.DomainErrorKey(err); key != "" {
		respondEphemeral(s, i.Interaction, h.translator.T(interactionLocale(i), key, nil))
		return
	}
	respondEphemeral(s, i.Interaction, "❌ "+err.Error())
}

func commandOptions(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func (h *Handler) HandleRaidCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	switch sub.Name {
	case "open":
		h.handleRaidOpen(s, i, sub)
	case "list":
		h.handleRaidList(s, i)
	case "close":
		h.handleRaidClose(s, i, sub)
	}
}

func (h *Handler) handleRaidOpen(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !canManageRaids(i, h.config) {
		respondEphemeral(s, i.Interaction, "⛔ Permission insuffisante.")
		return
	}
	ctx := context.Background()
	opts := commandOptions(sub.Options)

	massUpAt, err := pkgdiscord.ParseMassUpTime(opts["start"].StringValue())
	if err != nil {
		respondEphemeral(s, i.Interaction, "❌ "+err.Error())
		return
	}

	params := input.CreateRaidParams{
		GuildID:         i.GuildID,
		TemplateName:    opts["template"].StringValue(),
		MassUpAt:        massUpAt,
		PrepMinutes:     h.config.DefaultPrepMinutes,
		CleanupMinutes:  h.config.DefaultCleanupMinutes,
		CreatedBy:       i.Member.User.ID,
		CreatorUsername: resolveDisplayName(i.Member),
	}
	if opt, ok := opts["title"]; ok {
		params.Title = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := opts["description"]; ok {
		params.Description = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := opts["voice_channel"]; ok {
		params.VoiceChannelID = opt.ChannelValue(nil).ID
	}
	if opt, ok := opts["prep_minutes"]; ok {
		params.PrepMinutes = int(opt.IntValue())
	}
	if opt, ok := opts["cleanup_minutes"]; ok {
		params.CleanupMinutes = int(opt.IntValue())
	}

	raid, err := h.raidUseCase.CreateRaid(ctx, params)
	if err != nil {
		h.replyError(s, i, err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{buildRaidEmbed(raid)},
			Components: buildRaidComponents(raid),
		},
	})
	if err != nil {
		slog.Error("réponse raid open impossible", "raid", raid.ID, "error", err)
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		slog.Error("message raid introuvable après création", "raid", raid.ID, "error", err)
		return
	}

	threadID := ""
	threadName := pkgdiscord.LimitStr(fmt.Sprintf("%s • %s", raid.Title, pkgdiscord.FormatMassUpTime(raid.MassUpAt)), 95)
	thread, err := s.MessageThreadStartComplex(msg.ChannelID, msg.ID, &discordgo.ThreadStart{
		Name:                threadName,
		AutoArchiveDuration: 1440,
	})
	if err != nil {
		slog.Warn("création du fil raid impossible", "raid", raid.ID, "error", err)
	} else {
		threadID = thread.ID
	}

	if err := h.raidUseCase.SetMessageRefs(ctx, raid.ID, msg.ChannelID, msg.ID, threadID); err != nil {
		slog.Error("rattachement du message raid impossible", "raid", raid.ID, "error", err)
	}

	if threadID != "" {
		intro := fmt.Sprintf("**%s**\n🕒 <t:%d:F>\n", raid.Title, raid.MassUpAt.Unix())
		if _, err := s.ChannelMessageSend(threadID, intro); err != nil {
			slog.Warn("message d'intro du fil impossible", "raid", raid.ID, "error", err)
		}
	}
}

func (h *Handler) handleRaidList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raids := h.raidUseCase.ListRaids(i.GuildID)
	if len(raids) == 0 {
		respondEphemeral(s, i.Interaction, "Aucun raid.")
		return
	}

	lines := make([]string, 0, len(raids))
	for _, r := range raids {
		_, statusTxt := raidStatusStyle(r.State)
		lines = append(lines, fmt.Sprintf("• **%s** — %s — <t:%d:F> — %s", r.ID, r.Title, r.MassUpAt.Unix(), statusTxt))
	}
	if len(lines) > listedRaidsMax {
		lines = lines[:listedRaidsMax]
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "📋 Raids",
				Description: pkgdiscord.LimitStr(strings.Join(lines, "\n"), 3900),
				Color:       colorBlurple,
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (h *Handler) handleRaidClose(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !canManageRaids(i, h.config) {
		respondEphemeral(s, i.Interaction, "⛔ Permission insuffisante.")
		return
	}
	opts := commandOptions(sub.Options)
	raidID := opts["raid_id"].StringValue()

	if err := h.raidUseCase.ForceClose(context.Background(), raidID); err != nil {
		h.replyError(s, i, err)
		return
	}
	respondEphemeral(s, i.Interaction, "🔒 Raid fermé.")
}

func (h *Handler) HandleCompCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	switch sub.Name {
	case "create":
		h.handleCompCreate(s, i)
	case "list":
		h.handleCompList(s, i)
	case "delete":
		h.handleCompDelete(s, i, sub)
	}
}

func (h *Handler) handleCompCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !canManageRaids(i, h.config) {
		respondEphemeral(s, i.Interaction, "⛔ Permission insuffisante.")
		return
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "comp_create_modal",
			Title:    "Créer un template de compo",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "name", Label: "Nom", Style: discordgo.TextInputShort, Required: true, Placeholder: "Ex: ZvZ 20, Ganking 5..."},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "desc", Label: "Description", Style: discordgo.TextInputShort, Required: false, Placeholder: "But, stuff conseillé..."},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "spec", Label: "Rôles (un par ligne)", Style: discordgo.TextInputParagraph, Required: true, Placeholder: "Tank;1;ip>=1400\nHealer;1;ip\nDPS;3"},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "req", Label: "Rôles Discord requis (IDs)", Style: discordgo.TextInputShort, Required: false, Placeholder: "Ex: 123456789, 987654321"},
				}},
			},
		},
	})
}

func (h *Handler) handleCompList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	templates, err := h.templateUseCase.ListTemplates(context.Background(), i.GuildID)
	if err != nil {
		h.replyError(s, i, err)
		return
	}
	if len(templates) == 0 {
		respondEphemeral(s, i.Interaction, "Aucun template.")
		return
	}

	lines := make([]string, 0, len(templates))
	for _, t := range templates {
		total := 0
		for _, r := range t.Roles {
			total += r.Slots
		}
		lines = append(lines, fmt.Sprintf("• **%s** — %d rôles, %d places", t.Name, len(t.Roles), total))
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🧩 Templates",
				Description: pkgdiscord.LimitStr(strings.Join(lines, "\n"), 3900),
				Color:       colorBlurple,
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (h *Handler) handleCompDelete(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !canManageRaids(i, h.config) {
		respondEphemeral(s, i.Interaction, "⛔ Permission insuffisante.")
		return
	}
	opts := commandOptions(sub.Options)
	name := opts["name"].StringValue()

	if err := h.templateUseCase.DeleteTemplate(context.Background(), i.GuildID, name); err != nil {
		h.replyError(s, i, err)
		return
	}
	respondEphemeral(s, i.Interaction, fmt.Sprintf("🗑️ Template **%s** supprimé.", name))
}
