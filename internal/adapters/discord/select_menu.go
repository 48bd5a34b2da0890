package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/domain"
)

// HandleRoleSelect routes a roster role pick: roles requiring an item power
// open a modal first, the others join (or swap) immediately.
func (h *Handler) HandleRoleSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raidID := strings.TrimPrefix(i.MessageComponentData().CustomID, "raid_role_select_")
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	roleKey := values[0]

	raid, err := h.raidUseCase.GetRaid(raidID)
	if err != nil {
		h.replyError(s, i, err)
		return
	}
	roleDef := raid.Template.Role(roleKey)
	if roleDef == nil {
		h.replyError(s, i, domain.ErrRoleNotFound)
		return
	}

	if roleDef.IPRequired {
		label := fmt.Sprintf("IP pour %s", roleDef.Label)
		placeholder := "Ex: 1450"
		if roleDef.MinIP > 0 {
			placeholder = fmt.Sprintf("Minimum %d", roleDef.MinIP)
		}
		_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: fmt.Sprintf("raid_ip_modal_%s_%s", raidID, roleKey),
				Title:    "Item Power",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{CustomID: "ip", Label: label, Style: discordgo.TextInputShort, Required: true, Placeholder: placeholder},
					}},
				},
			},
		})
		return
	}

	h.finalizeJoin(s, i, raidID, roleKey, nil)
}

// finalizeJoin signs the requester up, swapping roles when already signed
// up elsewhere on the roster.
func (h *Handler) finalizeJoin(s *discordgo.Session, i *discordgo.InteractionCreate, raidID, roleKey string, ip *int) {
	ctx := context.Background()
	locale := interactionLocale(i)
	profile := memberProfile(i)

	raid, err := h.raidUseCase.GetRaid(raidID)
	if err != nil {
		h.replyError(s, i, err)
		return
	}

	var reply string
	if cur, ok := raid.Signups[profile.UserID]; ok && cur.RoleKey != roleKey {
		_, reply, err = h.signupUseCase.ChangeRole(ctx, locale, raidID, profile, roleKey, ip)
	} else {
		_, reply, err = h.signupUseCase.Join(ctx, locale, raidID, profile, roleKey, ip)
	}
	if err != nil {
		if reply != "" {
			respondEphemeral(s, i.Interaction, reply)
			return
		}
		h.replyError(s, i, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}
