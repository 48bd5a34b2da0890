package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) HandleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raidID := strings.TrimPrefix(i.MessageComponentData().CustomID, "btn_raid_leave_")
	reply, err := h.signupUseCase.Leave(context.Background(), interactionLocale(i), raidID, i.Member.User.ID)
	h.respondSignup(s, i, reply, err)
}

func (h *Handler) HandleAbsent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raidID := strings.TrimPrefix(i.MessageComponentData().CustomID, "btn_raid_absent_")
	reply, err := h.signupUseCase.MarkAbsent(context.Background(), interactionLocale(i), raidID, i.Member.User.ID)
	h.respondSignup(s, i, reply, err)
}

func (h *Handler) HandleNotify(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raidID := strings.TrimPrefix(i.MessageComponentData().CustomID, "btn_raid_notify_")
	reply, err := h.signupUseCase.ToggleNotify(context.Background(), interactionLocale(i), raidID, i.Member.User.ID)
	h.respondSignup(s, i, reply, err)
}

func (h *Handler) respondSignup(s *discordgo.Session, i *discordgo.InteractionCreate, reply string, err error) {
	if err != nil && reply == "" {
		h.replyError(s, i, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}
