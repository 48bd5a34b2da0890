package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/config"
	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
	pkgdiscord "albionbot/pkg/discord"
)

var _ output.Effects = (*LifecycleEffects)(nil)

const voicePrivilegePermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionVoiceSpeak

// LifecycleEffects exécute les effets de cycle de vie contre l'API Discord:
// rôle temporaire, overwrites vocaux, pings, rapport de présence.
type LifecycleEffects struct {
	session *discordgo.Session
	config  *config.Config
}

func NewLifecycleEffects(session *discordgo.Session, cfg *config.Config) *LifecycleEffects {
	return &LifecycleEffects{session: session, config: cfg}
}

// GrantPrivilege creates (or reuses) the raid's temp role, opens the voice
// overwrite and hands the role to every given participant. Per-member
// failures are logged and skipped; the grant succeeds as long as the role
// itself exists.
func (e *LifecycleEffects) GrantPrivilege(ctx context.Context, raid *entities.Raid, userIDs []string) (string, error) {
	roleID := ""
	if raid.Privilege != nil {
		roleID = raid.Privilege.RoleID
	}
	if roleID == "" {
		mentionable := true
		role, err := e.session.GuildRoleCreate(raid.GuildID, &discordgo.RoleParams{
			Name:        "Raid-" + raid.ID,
			Mentionable: &mentionable,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("création du rôle temporaire: %w", err)
		}
		roleID = role.ID
	}

	if raid.VoiceChannelID != "" {
		err := e.session.ChannelPermissionSet(raid.VoiceChannelID, roleID,
			discordgo.PermissionOverwriteTypeRole, voicePrivilegePermissions, 0,
			discordgo.WithContext(ctx))
		if err != nil {
			slog.Warn("overwrite vocal refusé", "raid", raid.ID, "voice", raid.VoiceChannelID, "error", err)
		}
	}

	for _, uid := range userIDs {
		if err := e.session.GuildMemberRoleAdd(raid.GuildID, uid, roleID, discordgo.WithContext(ctx)); err != nil {
			slog.Warn("attribution du rôle temporaire refusée", "raid", raid.ID, "user", uid, "error", err)
		}
	}
	return roleID, nil
}

func (e *LifecycleEffects) RevokePrivilege(ctx context.Context, raid *entities.Raid) error {
	if raid.Privilege == nil || raid.Privilege.RoleID == "" {
		return nil
	}
	roleID := raid.Privilege.RoleID
	if raid.VoiceChannelID != "" {
		if err := e.session.ChannelPermissionDelete(raid.VoiceChannelID, roleID, discordgo.WithContext(ctx)); err != nil {
			slog.Warn("retrait de l'overwrite vocal refusé", "raid", raid.ID, "error", err)
		}
	}
	if err := e.session.GuildRoleDelete(raid.GuildID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("suppression du rôle temporaire: %w", err)
	}
	return nil
}

// Notify posts message to the raid channel and thread, mentioning the temp
// role when one exists, then DMs the opt-in subset of audience.
func (e *LifecycleEffects) Notify(ctx context.Context, raid *entities.Raid, audience []string, message string) error {
	content := message
	if raid.Privilege != nil && raid.Privilege.RoleID != "" {
		content = roleMention(raid.Privilege.RoleID) + " " + content
	}
	if raid.VoiceChannelID != "" {
		content += "\n➡️ " + channelMention(raid.VoiceChannelID)
	}

	var firstErr error
	if raid.ChannelID != "" {
		if _, err := e.session.ChannelMessageSend(raid.ChannelID, content, discordgo.WithContext(ctx)); err != nil {
			firstErr = err
		}
	}
	if raid.ThreadID != "" {
		if _, err := e.session.ChannelMessageSend(raid.ThreadID, content, discordgo.WithContext(ctx)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, uid := range audience {
		if !raid.DMNotify[uid] {
			continue
		}
		dm, err := e.session.UserChannelCreate(uid, discordgo.WithContext(ctx))
		if err != nil {
			slog.Warn("ouverture du DM impossible", "raid", raid.ID, "user", uid, "error", err)
			continue
		}
		if _, err := e.session.ChannelMessageSend(dm.ID, content, discordgo.WithContext(ctx)); err != nil {
			slog.Warn("envoi du DM impossible", "raid", raid.ID, "user", uid, "error", err)
		}
	}
	return firstErr
}

// DeliverReport tries the organizer's DMs, then the raid thread, then the
// raid channel, stopping at the first success.
func (e *LifecycleEffects) DeliverReport(ctx context.Context, raid *entities.Raid, report domain.Report) error {
	embed := e.buildReportEmbed(raid, report)

	if raid.CreatedBy != "" {
		dm, err := e.session.UserChannelCreate(raid.CreatedBy, discordgo.WithContext(ctx))
		if err == nil {
			if _, err := e.session.ChannelMessageSendEmbed(dm.ID, embed, discordgo.WithContext(ctx)); err == nil {
				return nil
			}
		}
	}
	if raid.ThreadID != "" {
		if _, err := e.session.ChannelMessageSendEmbed(raid.ThreadID, embed, discordgo.WithContext(ctx)); err == nil {
			return nil
		}
	}
	if raid.ChannelID != "" {
		if _, err := e.session.ChannelMessageSendEmbed(raid.ChannelID, embed, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("rapport de présence indélivrable: %w", err)
		}
		return nil
	}
	return fmt.Errorf("rapport de présence indélivrable: aucun destinataire")
}

func (e *LifecycleEffects) buildReportEmbed(raid *entities.Raid, report domain.Report) *discordgo.MessageEmbed {
	fmtIDs := func(ids []string) string {
		if len(ids) == 0 {
			return "*(aucun)*"
		}
		lines := make([]string, len(ids))
		for i, uid := range ids {
			lines[i] = "• " + userMention(uid)
		}
		return strings.Join(lines, "\n")
	}

	hasVoice := raid.VoiceChannelID != ""
	var title, content string
	if hasVoice {
		title = "📞 Appel vocal"
		content = fmt.Sprintf(
			"📞 **Appel vocal (T+%dmin)** — Raid **%s** (`%s`)\n"+
				"🔊 Vocal: %s\n\n"+
				"✅ **Présents attendus** (%d):\n%s\n\n"+
				"⚠️ **Présents inattendus** (%d):\n%s\n\n"+
				"❌ **Attendus manquants** (%d):\n%s",
			e.config.VoiceCheckAfterMinutes, raid.Title, raid.ID,
			channelMention(raid.VoiceChannelID),
			len(report.PresentExpected), fmtIDs(report.PresentExpected),
			len(report.PresentUnexpected), fmtIDs(report.PresentUnexpected),
			len(report.MissingExpected), fmtIDs(report.MissingExpected),
		)
	} else {
		title = "📝 Présences (sans vocal)"
		content = fmt.Sprintf(
			"📝 **Présences (sans vocal défini)** — Raid **%s** (`%s`)\n\n"+
				"✅ **Inscrits pris comme présents** (%d):\n%s",
			raid.Title, raid.ID,
			len(report.PresentExpected), fmtIDs(report.PresentExpected),
		)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: pkgdiscord.LimitStr(content, 3900),
		Color:       colorTeal,
	}
}

// PresenceSnapshot lit l'état vocal du cache de session. Les bots sont
// exclus du relevé.
func (e *LifecycleEffects) PresenceSnapshot(ctx context.Context, raid *entities.Raid) ([]string, bool, error) {
	if raid.VoiceChannelID == "" {
		return nil, false, nil
	}
	guild, err := e.session.State.Guild(raid.GuildID)
	if err != nil {
		return nil, true, fmt.Errorf("guilde absente du cache: %w", err)
	}

	var present []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != raid.VoiceChannelID {
			continue
		}
		if member, err := e.session.State.Member(raid.GuildID, vs.UserID); err == nil &&
			member.User != nil && member.User.Bot {
			continue
		}
		present = append(present, vs.UserID)
	}
	sort.Strings(present)
	return present, true, nil
}

func (e *LifecycleEffects) RefreshMessage(ctx context.Context, raid *entities.Raid) {
	if raid.ChannelID == "" || raid.MessageID == "" {
		return
	}
	embeds := []*discordgo.MessageEmbed{buildRaidEmbed(raid)}
	components := buildRaidComponents(raid)
	_, err := e.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         raid.MessageID,
		Channel:    raid.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		slog.Error("mise à jour du message raid impossible", "raid", raid.ID, "error", err)
	}
}
