package discord

import (
	"albionbot/internal/ports/input"

	"github.com/bwmarrin/discordgo"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func memberProfile(i *discordgo.InteractionCreate) input.MemberProfile {
	if i.Member == nil || i.Member.User == nil {
		return input.MemberProfile{}
	}
	return input.MemberProfile{
		UserID:   i.Member.User.ID,
		Username: resolveDisplayName(i.Member),
		RoleIDs:  i.Member.Roles,
	}
}

func interactionLocale(i *discordgo.InteractionCreate) string {
	return string(i.Locale)
}
