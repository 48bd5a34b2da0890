package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	pkgdiscord "albionbot/pkg/discord"
)

const (
	colorGreen   = 0x2ecc71
	colorRed     = 0xe74c3c
	colorGrey    = 0x95a5a6
	colorBlurple = 0x5865f2
	colorTeal    = 0x11806a
)

const maxEmbedFields = 25

func raidStatusStyle(state string) (int, string) {
	switch {
	case state == domain.StateClosed:
		return colorGrey, "⚪ Terminé"
	case domain.StateAtLeast(state, domain.StateMassedUp):
		return colorRed, "🔴 En cours"
	default:
		return colorGreen, "🟢 Ouvert"
	}
}

func userMention(userID string) string {
	return "<@" + userID + ">"
}

func roleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// buildRosterLines renders one block per template role: header with counts
// and tags, then the main entries and the waitlist in promotion order.
func buildRosterLines(raid *entities.Raid) []string {
	var lines []string
	for _, role := range raid.Template.Roles {
		var main []*entities.Signup
		for _, s := range raid.Signups {
			if s.RoleKey == role.Key && s.Status == domain.StatusMain {
				main = append(main, s)
			}
		}
		sort.Slice(main, func(i, j int) bool {
			if !main[i].JoinedAt.Equal(main[j].JoinedAt) {
				return main[i].JoinedAt.Before(main[j].JoinedAt)
			}
			return main[i].UserID < main[j].UserID
		})
		wait := raid.Waitlist(role.Key)

		header := fmt.Sprintf("**%s** `%d/%d`", role.Label, len(main), role.Slots)
		if len(wait) > 0 {
			header += fmt.Sprintf("  `Prioritaire +%d`", len(wait))
		}
		var tags []string
		if role.IPRequired {
			if role.MinIP > 0 {
				tags = append(tags, fmt.Sprintf("IP≥%d", role.MinIP))
			} else {
				tags = append(tags, "IP")
			}
		}
		if len(role.RequiredRoleIDs) > 0 {
			tags = append(tags, "req")
		}
		if len(tags) > 0 {
			header += fmt.Sprintf("  `%s`", strings.Join(tags, "/"))
		}
		lines = append(lines, header)

		fmtUser := func(s *entities.Signup) string {
			if role.IPRequired {
				ipTxt := "?"
				if s.IP != nil {
					ipTxt = fmt.Sprintf("%d", *s.IP)
				}
				return fmt.Sprintf("%s(%s)", userMention(s.UserID), ipTxt)
			}
			return userMention(s.UserID)
		}

		if len(main) == 0 {
			lines = append(lines, "• Inscrits: *(vide)*")
		} else {
			parts := make([]string, len(main))
			for i, s := range main {
				parts[i] = fmtUser(s)
			}
			lines = append(lines, "• Inscrits: "+strings.Join(parts, " "))
		}
		if len(wait) > 0 {
			parts := make([]string, len(wait))
			for i, s := range wait {
				parts[i] = fmtUser(s)
			}
			lines = append(lines, "• Wait: "+strings.Join(parts, " "))
		}
		lines = append(lines, "")
	}
	return lines
}

func buildRaidEmbed(raid *entities.Raid) *discordgo.MessageEmbed {
	color, statusTxt := raidStatusStyle(raid.State)

	embed := &discordgo.MessageEmbed{
		Title:       raid.Title,
		Description: pkgdiscord.LimitStr(strings.TrimSpace(raid.Description), 1800),
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s • Raid ID: %s", statusTxt, raid.ID),
		},
	}

	massUp := raid.MassUpAt.Unix()
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "🕒",
		Value:  fmt.Sprintf("<t:%d:F>\n<t:%d:R>", massUp, massUp),
		Inline: true,
	})

	if len(raid.Template.RaidRequiredRoleIDs) > 0 {
		mentions := make([]string, len(raid.Template.RaidRequiredRoleIDs))
		for i, rid := range raid.Template.RaidRequiredRoleIDs {
			mentions[i] = roleMention(rid)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🔒 Accès raid",
			Value: "Rôle(s) requis : " + strings.Join(mentions, " "),
		})
	}

	reserved := len(embed.Fields) + 1
	if len(raid.Absent) > 0 {
		reserved++
	}
	maxRosterFields := maxEmbedFields - reserved
	if maxRosterFields < 1 {
		maxRosterFields = 1
	}

	chunks := pkgdiscord.ChunkLines(buildRosterLines(raid), 1000)
	shown := min(len(chunks), maxRosterFields)
	for idx, chunk := range chunks[:shown] {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("📝 Compo & inscriptions (%d/%d)", idx+1, shown),
			Value: chunk,
		})
	}
	if len(chunks) > maxRosterFields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "⚠️ Roster",
			Value: "Roster trop long (limite Discord embed).",
		})
	}

	if len(raid.Absent) > 0 {
		ids := make([]string, 0, len(raid.Absent))
		for uid := range raid.Absent {
			ids = append(ids, uid)
		}
		sort.Strings(ids)
		absLines := make([]string, len(ids))
		for i, uid := range ids {
			absLines[i] = "• " + userMention(uid)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🚫 Absents",
			Value: pkgdiscord.LimitStr(strings.Join(absLines, "\n"), 1000),
		})
	}

	return embed
}

func buildRaidComponents(raid *entities.Raid) []discordgo.MessageComponent {
	frozen := raid.Frozen()

	options := make([]discordgo.SelectMenuOption, 0, len(raid.Template.Roles))
	for _, role := range raid.Template.Roles {
		desc := ""
		if role.IPRequired {
			if role.MinIP > 0 {
				desc = fmt.Sprintf("IP minimum %d", role.MinIP)
			} else {
				desc = "IP demandée"
			}
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("%s (%d/%d)", role.Label, raid.CountAssigned(role.Key), role.Slots),
			Value:       role.Key,
			Description: desc,
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "raid_role_select_" + raid.ID,
				Placeholder: "Choisis ton rôle",
				Options:     options,
				Disabled:    frozen,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "🚪 Se désinscrire", Style: discordgo.DangerButton, CustomID: "btn_raid_leave_" + raid.ID, Disabled: frozen},
			discordgo.Button{Label: "🚫 Absent", Style: discordgo.SecondaryButton, CustomID: "btn_raid_absent_" + raid.ID, Disabled: frozen},
			discordgo.Button{Label: "🔔 Notif DM", Style: discordgo.SecondaryButton, CustomID: "btn_raid_notify_" + raid.ID, Disabled: frozen},
		}},
	}
}
