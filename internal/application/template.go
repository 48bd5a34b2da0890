package application

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
)

type TemplateService struct {
	templates output.TemplateRepository
	now       func() time.Time
}

func NewTemplateService(templates output.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates, now: time.Now}
}

func (s *TemplateService) SaveFromSpec(ctx context.Context, guildID, name, description, createdBy string, raidRequiredRoleIDs []string, spec string) (*entities.Template, []string, error) {
	roles, warnings := ParseCompSpec(spec)
	tpl := &entities.Template{
		GuildID:             guildID,
		Name:                strings.TrimSpace(name),
		Description:         strings.TrimSpace(description),
		CreatedBy:           createdBy,
		RaidRequiredRoleIDs: raidRequiredRoleIDs,
		Roles:               roles,
		CreatedAt:           s.now(),
		UpdatedAt:           s.now(),
	}
	if err := tpl.Validate(); err != nil {
		return nil, warnings, err
	}
	if err := s.templates.Save(ctx, tpl); err != nil {
		return nil, warnings, fmt.Errorf("save template: %w", err)
	}
	return tpl, warnings, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, guildID, name string) (*entities.Template, error) {
	tpl, err := s.templates.FindByName(ctx, guildID, name)
	if err != nil {
		return nil, domain.ErrTemplateNotFound
	}
	return tpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, guildID string) ([]entities.Template, error) {
	return s.templates.FindByGuildID(ctx, guildID)
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, guildID, name string) error {
	if _, err := s.templates.FindByName(ctx, guildID, name); err != nil {
		return domain.ErrTemplateNotFound
	}
	return s.templates.Delete(ctx, guildID, name)
}

var (
	specFieldSplit = regexp.MustCompile(`\s*[;|]\s*`)
	specBareIDs    = regexp.MustCompile(`^[\d,\s<@&>]+$`)
	idDigits       = regexp.MustCompile(`\d+`)
	keySlug        = regexp.MustCompile(`[^a-z0-9]+`)
	keyUnderscores = regexp.MustCompile(`_+`)
)

// ParseCompSpec parses a comp spec, one role per line:
//
//	Label ; slots ; [ip | ip>=N] ; [req=<role ids/mentions>] ; [key=...]
//
// Invalid lines are skipped with a warning rather than failing the whole
// spec. Keys default to a slug of the label, deduplicated with _2, _3, ...
func ParseCompSpec(spec string) ([]entities.RoleDef, []string) {
	usedKeys := make(map[string]bool)
	var roles []entities.RoleDef
	var warnings []string

	var lines []string
	for _, ln := range strings.Split(spec, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return nil, []string{"Spec vide."}
	}

	for i, ln := range lines {
		parts := specFieldSplit.Split(ln, -1)
		if len(parts) < 2 {
			warnings = append(warnings, fmt.Sprintf("Ligne %d: format invalide (min: Label;slots).", i+1))
			continue
		}

		label := strings.TrimSpace(parts[0])
		slots, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || slots < 1 {
			warnings = append(warnings, fmt.Sprintf("Ligne %d: slots invalide: %q.", i+1, strings.TrimSpace(parts[1])))
			continue
		}

		var (
			ipRequired bool
			minIP      int
			reqIDs     []string
			key        string
		)
		for _, p := range parts[2:] {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			low := strings.ToLower(p)
			switch {
			case low == "ip" || low == "ip=1" || low == "ip=true" || low == "ip_required" || low == "ip_required=true":
				ipRequired = true
			case low == "ip=0" || low == "ip=false" || low == "noip" || low == "ip_required=false":
				ipRequired = false
			case strings.HasPrefix(low, "ip>="):
				n, err := strconv.Atoi(strings.TrimSpace(low[len("ip>="):]))
				if err != nil || n < 0 {
					warnings = append(warnings, fmt.Sprintf("Ligne %d: IP minimum invalide: %q.", i+1, p))
					continue
				}
				ipRequired = true
				minIP = n
			case strings.HasPrefix(low, "req=") || strings.HasPrefix(low, "require=") || strings.HasPrefix(low, "roles="):
				reqIDs = ParseIDs(p[strings.Index(p, "=")+1:])
			case strings.HasPrefix(low, "key="):
				key = strings.TrimSpace(p[len("key="):])
			case specBareIDs.MatchString(p) && strings.ContainsAny(p, "0123456789"):
				reqIDs = ParseIDs(p)
			default:
				warnings = append(warnings, fmt.Sprintf("Ligne %d: option inconnue %q ignorée.", i+1, p))
			}
		}

		if key == "" {
			key = slugKey(label)
		}
		baseKey := key
		for n := 2; usedKeys[key]; n++ {
			key = fmt.Sprintf("%s_%d", baseKey, n)
		}
		usedKeys[key] = true

		roles = append(roles, entities.RoleDef{
			Key:             key,
			Label:           label,
			Slots:           slots,
			IPRequired:      ipRequired,
			MinIP:           minIP,
			RequiredRoleIDs: reqIDs,
		})
	}

	if len(roles) == 0 {
		warnings = append(warnings, "Aucun rôle valide.")
	}
	return roles, warnings
}

// ParseIDs extracts Discord snowflake ids from a comma list or mentions
// like <@&123>.
func ParseIDs(raw string) []string {
	return idDigits.FindAllString(raw, -1)
}

func slugKey(label string) string {
	key := keySlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
	key = strings.Trim(keyUnderscores.ReplaceAllString(key, "_"), "_")
	if key == "" {
		key = "role"
	}
	return key
}
