package input

import (
	"context"

	"albionbot/internal/domain/entities"
)

type TemplateUseCase interface {
	// SaveFromSpec parses a comp spec ("Label;slots;[ip|ip>=N];[req=ids]",
	// one role per line), validates the resulting template and upserts it.
	// The returned strings are parse warnings for the organizer.
	SaveFromSpec(ctx context.Context, guildID, name, description, createdBy string, raidRequiredRoleIDs []string, spec string) (*entities.Template, []string, error)
	GetTemplate(ctx context.Context, guildID, name string) (*entities.Template, error)
	ListTemplates(ctx context.Context, guildID string) ([]entities.Template, error)
	DeleteTemplate(ctx context.Context, guildID, name string) error
}
