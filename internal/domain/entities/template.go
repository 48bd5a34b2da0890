package entities

import (
	"fmt"
	"time"

	"albionbot/internal/domain"
)

// RoleDef is one role line of a composition template.
type RoleDef struct {
	Key             string
	Label           string
	Slots           int
	IPRequired      bool
	MinIP           int
	RequiredRoleIDs []string
}

// Template is a named composition: an ordered role list plus raid-wide
// join requirements. Unique by (guild, name).
type Template struct {
	GuildID             string
	Name                string
	Description         string
	CreatedBy           string
	RaidRequiredRoleIDs []string
	Roles               []RoleDef
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Role returns the role definition for key, or nil.
func (t *Template) Role(key string) *RoleDef {
	for i := range t.Roles {
		if t.Roles[i].Key == key {
			return &t.Roles[i]
		}
	}
	return nil
}

// Validate applies the template invariants: at least one role, slots >= 1,
// unique keys and labels.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: nom vide", domain.ErrTemplateInvalid)
	}
	if len(t.Roles) == 0 {
		return fmt.Errorf("%w: aucun rôle", domain.ErrTemplateInvalid)
	}
	keys := make(map[string]bool, len(t.Roles))
	labels := make(map[string]bool, len(t.Roles))
	for _, r := range t.Roles {
		if r.Label == "" {
			return fmt.Errorf("%w: label vide", domain.ErrTemplateInvalid)
		}
		if r.Slots < 1 {
			return fmt.Errorf("%w: slots < 1 pour %q", domain.ErrTemplateInvalid, r.Label)
		}
		if keys[r.Key] {
			return fmt.Errorf("%w: clé dupliquée %q", domain.ErrTemplateInvalid, r.Key)
		}
		if labels[r.Label] {
			return fmt.Errorf("%w: label dupliqué %q", domain.ErrTemplateInvalid, r.Label)
		}
		if r.MinIP < 0 {
			return fmt.Errorf("%w: IP minimum négative pour %q", domain.ErrTemplateInvalid, r.Label)
		}
		keys[r.Key] = true
		labels[r.Label] = true
	}
	return nil
}

// Clone returns a deep copy, used to snapshot the template into a raid so
// later edits never alter a live raid.
func (t *Template) Clone() *Template {
	cp := *t
	cp.RaidRequiredRoleIDs = append([]string(nil), t.RaidRequiredRoleIDs...)
	cp.Roles = make([]RoleDef, len(t.Roles))
	for i, r := range t.Roles {
		cp.Roles[i] = r
		cp.Roles[i].RequiredRoleIDs = append([]string(nil), r.RequiredRoleIDs...)
	}
	return &cp
}
