package output

import (
	"context"

	"albionbot/internal/domain/entities"
)

// RaidRepository persists raid aggregates (raid row + signup rows).
// Save is an upsert of the whole aggregate.
type RaidRepository interface {
	Save(ctx context.Context, raid *entities.Raid) error
	FindByID(ctx context.Context, id string) (*entities.Raid, error)
	FindActive(ctx context.Context) ([]*entities.Raid, error)
	Delete(ctx context.Context, id string) error
}
