package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
)

var _ output.TemplateRepository = (*TemplateRepository)(nil)

// TemplateRepository implements output.TemplateRepository using pgx.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Save upserts the template and replaces its role rows.
func (r *TemplateRepository) Save(ctx context.Context, tpl *entities.Template) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO templates (guild_id, name, description, created_by, raid_required_role_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (guild_id, name) DO UPDATE SET
			description = EXCLUDED.description,
			raid_required_role_ids = EXCLUDED.raid_required_role_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		tpl.GuildID, tpl.Name, tpl.Description, tpl.CreatedBy, tpl.RaidRequiredRoleIDs,
		timeToPgtype(tpl.CreatedAt), timeToPgtype(tpl.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM template_roles WHERE template_id = $1`, id); err != nil {
		return fmt.Errorf("delete template roles: %w", err)
	}
	for i, role := range tpl.Roles {
		_, err := tx.Exec(ctx, `
			INSERT INTO template_roles (template_id, position, key, label, slots, ip_required, min_ip, required_role_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, i, role.Key, role.Label, int32(role.Slots), role.IPRequired, int32(role.MinIP), role.RequiredRoleIDs,
		)
		if err != nil {
			return fmt.Errorf("insert template role: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *TemplateRepository) FindByName(ctx context.Context, guildID, name string) (*entities.Template, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, guild_id, name, description, created_by, raid_required_role_ids, created_at, updated_at
		FROM templates WHERE guild_id = $1 AND name = $2`, guildID, name)
	tpl, id, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("get template by name: %w", err)
	}
	if err := r.attachRoles(ctx, id, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *TemplateRepository) FindByGuildID(ctx context.Context, guildID string) ([]entities.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, name, description, created_by, raid_required_role_ids, created_at, updated_at
		FROM templates WHERE guild_id = $1 ORDER BY created_at DESC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("get templates by guild id: %w", err)
	}
	defer rows.Close()

	var out []entities.Template
	var ids []int64
	for rows.Next() {
		tpl, id, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *tpl)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.attachRoles(ctx, ids[i], &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, guildID, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE guild_id = $1 AND name = $2`, guildID, name); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) attachRoles(ctx context.Context, id int64, tpl *entities.Template) error {
	rows, err := r.pool.Query(ctx, `
		SELECT key, label, slots, ip_required, min_ip, required_role_ids
		FROM template_roles WHERE template_id = $1 ORDER BY position`, id)
	if err != nil {
		return fmt.Errorf("get template roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role entities.RoleDef
		var slots, minIP int32
		if err := rows.Scan(&role.Key, &role.Label, &slots, &role.IPRequired, &minIP, &role.RequiredRoleIDs); err != nil {
			return fmt.Errorf("scan template role: %w", err)
		}
		role.Slots = int(slots)
		role.MinIP = int(minIP)
		tpl.Roles = append(tpl.Roles, role)
	}
	return rows.Err()
}

func scanTemplate(row pgx.Row) (*entities.Template, int64, error) {
	var (
		tpl                  entities.Template
		id                   int64
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &tpl.GuildID, &tpl.Name, &tpl.Description, &tpl.CreatedBy,
		&tpl.RaidRequiredRoleIDs, &createdAt, &updatedAt)
	if err != nil {
		return nil, 0, err
	}
	tpl.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	tpl.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &tpl, id, nil
}
