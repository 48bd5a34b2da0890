package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albionbot/internal/domain"
)

func validTemplate() *Template {
	return &Template{
		GuildID: "g1",
		Name:    "zvz",
		Roles: []RoleDef{
			{Key: "tank", Label: "Tank", Slots: 1},
			{Key: "dps", Label: "DPS", Slots: 3, RequiredRoleIDs: []string{"111"}},
		},
	}
}

func TestValidateAcceptsWellFormedTemplate(t *testing.T) {
	assert.NoError(t, validTemplate().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Template)
	}{
		{"nom vide", func(tpl *Template) { tpl.Name = "" }},
		{"aucun rôle", func(tpl *Template) { tpl.Roles = nil }},
		{"label vide", func(tpl *Template) { tpl.Roles[0].Label = "" }},
		{"slots nuls", func(tpl *Template) { tpl.Roles[0].Slots = 0 }},
		{"clé dupliquée", func(tpl *Template) { tpl.Roles[1].Key = "tank" }},
		{"label dupliqué", func(tpl *Template) { tpl.Roles[1].Label = "Tank" }},
		{"min ip négative", func(tpl *Template) { tpl.Roles[0].MinIP = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate()
			tc.mutate(tpl)
			assert.ErrorIs(t, tpl.Validate(), domain.ErrTemplateInvalid)
		})
	}
}

func TestRoleLookup(t *testing.T) {
	tpl := validTemplate()
	require.NotNil(t, tpl.Role("dps"))
	assert.Equal(t, "DPS", tpl.Role("dps").Label)
	assert.Nil(t, tpl.Role("healer"))
}

func TestCloneIsIndependent(t *testing.T) {
	tpl := validTemplate()
	cp := tpl.Clone()

	cp.Roles[1].RequiredRoleIDs[0] = "999"
	cp.Roles[0].Slots = 42

	assert.Equal(t, "111", tpl.Roles[1].RequiredRoleIDs[0])
	assert.Equal(t, 1, tpl.Roles[0].Slots)
}
