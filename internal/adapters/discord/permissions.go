package discord

import (
	"github.com/bwmarrin/discordgo"

	"albionbot/internal/config"
)

// canManageRaids applique la politique de gestion: administrateur, ou
// Gérer le serveur si exigé par la config, ou porteur du rôle manager.
func canManageRaids(i *discordgo.InteractionCreate, cfg *config.Config) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if cfg.RaidRequireManageGuild && i.Member.Permissions&discordgo.PermissionManageServer != 0 {
		return true
	}
	if cfg.RaidManagerRoleID != "" {
		for _, roleID := range i.Member.Roles {
			if roleID == cfg.RaidManagerRoleID {
				return true
			}
		}
	}
	return false
}
