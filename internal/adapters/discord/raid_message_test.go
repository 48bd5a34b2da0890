package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
)

func testRaid() *entities.Raid {
	base := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	ip := 1450
	return &entities.Raid{
		ID:      "R1",
		GuildID: "g1",
		Title:   "ZvZ du soir",
		Template: &entities.Template{
			GuildID:             "g1",
			Name:                "zvz5",
			RaidRequiredRoleIDs: []string{"555"},
			Roles: []entities.RoleDef{
				{Key: "tank", Label: "Tank", Slots: 1},
				{Key: "healer", Label: "Healer", Slots: 1, IPRequired: true, MinIP: 1400},
				{Key: "dps", Label: "DPS", Slots: 3},
			},
		},
		MassUpAt:       base,
		PrepMinutes:    10,
		CleanupMinutes: 30,
		State:          domain.StateOpen,
		Signups: map[string]*entities.Signup{
			"u1": {UserID: "u1", RoleKey: "tank", Status: domain.StatusMain, JoinedAt: base.Add(-time.Hour)},
			"u2": {UserID: "u2", RoleKey: "healer", Status: domain.StatusMain, IP: &ip, JoinedAt: base.Add(-time.Hour)},
			"u3": {UserID: "u3", RoleKey: "tank", Status: domain.StatusWait, JoinedAt: base.Add(-30 * time.Minute)},
		},
		Absent:   map[string]bool{"u9": true},
		DMNotify: map[string]bool{},
	}
}

func TestBuildRosterLines(t *testing.T) {
	lines := buildRosterLines(testRaid())
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "**Tank** `1/1`  `Prioritaire +1`")
	assert.Contains(t, joined, "• Wait: <@u3>")
	// L'IP déclarée s'affiche à côté de la mention.
	assert.Contains(t, joined, "<@u2>(1450)")
	assert.Contains(t, joined, "`IP≥1400`")
	assert.Contains(t, joined, "• Inscrits: *(vide)*")
}

func TestBuildRaidEmbed(t *testing.T) {
	raid := testRaid()
	embed := buildRaidEmbed(raid)

	assert.Equal(t, "ZvZ du soir", embed.Title)
	assert.Equal(t, colorGreen, embed.Color)
	assert.Contains(t, embed.Footer.Text, "🟢 Ouvert")
	assert.Contains(t, embed.Footer.Text, "R1")

	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "🔒 Accès raid")
	assert.Contains(t, names, "🚫 Absents")
}

func TestRaidStatusStyle(t *testing.T) {
	for state, want := range map[string]int{
		domain.StateOpen:       colorGreen,
		domain.StatePrep:       colorGreen,
		domain.StateMassedUp:   colorRed,
		domain.StateReconciled: colorRed,
		domain.StateClosed:     colorGrey,
	} {
		color, _ := raidStatusStyle(state)
		assert.Equalf(t, want, color, "état %s", state)
	}
}

func TestBuildRaidComponentsDisabledWhenFrozen(t *testing.T) {
	raid := testRaid()

	components := buildRaidComponents(raid)
	require.Len(t, components, 2)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)
	assert.False(t, menu.Disabled)
	assert.Equal(t, "raid_role_select_R1", menu.CustomID)
	require.Len(t, menu.Options, 3)
	assert.Equal(t, "Tank (1/1)", menu.Options[0].Label)

	raid.State = domain.StateMassedUp
	components = buildRaidComponents(raid)
	row = components[0].(discordgo.ActionsRow)
	menu = row.Components[0].(discordgo.SelectMenu)
	assert.True(t, menu.Disabled)

	buttons := components[1].(discordgo.ActionsRow)
	for _, c := range buttons.Components {
		btn, ok := c.(discordgo.Button)
		require.True(t, ok)
		assert.True(t, btn.Disabled)
	}
}
