package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"albionbot/internal/application"
	pkgdiscord "albionbot/pkg/discord"
)

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// HandleCompCreateModal persists the template described by the modal. Parse
// warnings come back to the organizer but never block the save.
func (h *Handler) HandleCompCreateModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	name := strings.TrimSpace(modalInputValue(data, "name"))
	desc := strings.TrimSpace(modalInputValue(data, "desc"))
	spec := modalInputValue(data, "spec")
	reqIDs := application.ParseIDs(modalInputValue(data, "req"))

	tpl, warnings, err := h.templateUseCase.SaveFromSpec(
		context.Background(), i.GuildID, name, desc, i.Member.User.ID, reqIDs, spec)
	if err != nil {
		h.replyError(s, i, err)
		return
	}

	reply := fmt.Sprintf("✅ Template **%s** enregistré (%d rôles).", tpl.Name, len(tpl.Roles))
	if len(warnings) > 0 {
		reply += "\n⚠️ " + strings.Join(warnings, "\n⚠️ ")
	}
	respondEphemeral(s, i.Interaction, pkgdiscord.LimitStr(reply, 1900))
}

// HandleIPModal finalizes a join on an IP-gated role. Custom id layout:
// raid_ip_modal_<raidID>_<roleKey>; raid ids never contain underscores.
func (h *Handler) HandleIPModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	rest := strings.TrimPrefix(data.CustomID, "raid_ip_modal_")
	raidID, roleKey, ok := strings.Cut(rest, "_")
	if !ok {
		return
	}

	raw := strings.TrimSpace(modalInputValue(data, "ip"))
	ip, err := strconv.Atoi(raw)
	if err != nil {
		respondEphemeral(s, i.Interaction, "❌ IP invalide (entier attendu).")
		return
	}

	h.finalizeJoin(s, i, raidID, roleKey, &ip)
}
