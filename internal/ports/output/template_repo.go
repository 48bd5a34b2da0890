package output

import (
	"context"

	"albionbot/internal/domain/entities"
)

type TemplateRepository interface {
	Save(ctx context.Context, tpl *entities.Template) error
	FindByName(ctx context.Context, guildID, name string) (*entities.Template, error)
	FindByGuildID(ctx context.Context, guildID string) ([]entities.Template, error)
	Delete(ctx context.Context, guildID, name string) error
}
