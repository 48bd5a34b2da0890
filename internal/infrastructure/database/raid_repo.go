package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
)

var _ output.RaidRepository = (*RaidRepository)(nil)

// RaidRepository implements output.RaidRepository using pgx. The template
// snapshot travels as jsonb; signup rows are replaced wholesale on save,
// which keeps the aggregate write atomic.
type RaidRepository struct {
	pool *pgxpool.Pool
}

// NewRaidRepository creates a RaidRepository.
func NewRaidRepository(pool *pgxpool.Pool) *RaidRepository {
	return &RaidRepository{pool: pool}
}

func (r *RaidRepository) Save(ctx context.Context, raid *entities.Raid) error {
	snapshot, err := json.Marshal(raid.Template)
	if err != nil {
		return fmt.Errorf("marshal template snapshot: %w", err)
	}

	var privRoleID string
	var privGrantedAt, privRevokeAt pgtype.Timestamptz
	if raid.Privilege != nil {
		privRoleID = raid.Privilege.RoleID
		privGrantedAt = timeToPgtype(raid.Privilege.GrantedAt)
		privRevokeAt = timeToPgtype(raid.Privilege.RevokeAt)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO raids (id, guild_id, template_snapshot, title, description, mass_up_at,
			prep_minutes, cleanup_minutes, state, created_by, created_at,
			channel_id, message_id, thread_id, voice_channel_id,
			privilege_role_id, privilege_granted_at, privilege_revoke_at,
			absent, dm_notify, expected, last_present)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			mass_up_at = EXCLUDED.mass_up_at,
			state = EXCLUDED.state,
			channel_id = EXCLUDED.channel_id,
			message_id = EXCLUDED.message_id,
			thread_id = EXCLUDED.thread_id,
			voice_channel_id = EXCLUDED.voice_channel_id,
			privilege_role_id = EXCLUDED.privilege_role_id,
			privilege_granted_at = EXCLUDED.privilege_granted_at,
			privilege_revoke_at = EXCLUDED.privilege_revoke_at,
			absent = EXCLUDED.absent,
			dm_notify = EXCLUDED.dm_notify,
			expected = EXCLUDED.expected,
			last_present = EXCLUDED.last_present`,
		raid.ID, raid.GuildID, snapshot, raid.Title, raid.Description, timeToPgtype(raid.MassUpAt),
		int32(raid.PrepMinutes), int32(raid.CleanupMinutes), raid.State, raid.CreatedBy, timeToPgtype(raid.CreatedAt),
		raid.ChannelID, raid.MessageID, raid.ThreadID, raid.VoiceChannelID,
		privRoleID, privGrantedAt, privRevokeAt,
		setToSlice(raid.Absent), setToSlice(raid.DMNotify), raid.Expected, raid.LastPresent,
	)
	if err != nil {
		return fmt.Errorf("upsert raid: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM raid_signups WHERE raid_id = $1`, raid.ID); err != nil {
		return fmt.Errorf("delete signups: %w", err)
	}
	for _, s := range raid.Signups {
		_, err := tx.Exec(ctx, `
			INSERT INTO raid_signups (raid_id, user_id, username, role_key, status, ip, member_role_ids, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			raid.ID, s.UserID, s.Username, s.RoleKey, s.Status,
			intPtrToPgtype(s.IP), s.MemberRoleIDs, timeToPgtype(s.JoinedAt),
		)
		if err != nil {
			return fmt.Errorf("insert signup: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *RaidRepository) FindByID(ctx context.Context, id string) (*entities.Raid, error) {
	rows, err := r.pool.Query(ctx, raidSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get raid by id: %w", err)
	}
	raids, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(raids) == 0 {
		return nil, domain.ErrRaidNotFound
	}
	return raids[0], nil
}

// FindActive returns all raids that have not reached the terminal state.
func (r *RaidRepository) FindActive(ctx context.Context) ([]*entities.Raid, error) {
	rows, err := r.pool.Query(ctx, raidSelect+` WHERE state <> $1 ORDER BY created_at`, domain.StateClosed)
	if err != nil {
		return nil, fmt.Errorf("get active raids: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *RaidRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM raids WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete raid: %w", err)
	}
	return nil
}

const raidSelect = `
	SELECT id, guild_id, template_snapshot, title, description, mass_up_at,
		prep_minutes, cleanup_minutes, state, created_by, created_at,
		channel_id, message_id, thread_id, voice_channel_id,
		privilege_role_id, privilege_granted_at, privilege_revoke_at,
		absent, dm_notify, expected, last_present
	FROM raids`

func (r *RaidRepository) collect(ctx context.Context, rows pgx.Rows) ([]*entities.Raid, error) {
	defer rows.Close()

	var out []*entities.Raid
	for rows.Next() {
		var (
			raid                      entities.Raid
			snapshot                  []byte
			massUpAt, createdAt       pgtype.Timestamptz
			prepMinutes, cleanupMin   int32
			privRoleID                string
			privGrantedAt, privRevoke pgtype.Timestamptz
			absent, dmNotify          []string
		)
		err := rows.Scan(&raid.ID, &raid.GuildID, &snapshot, &raid.Title, &raid.Description, &massUpAt,
			&prepMinutes, &cleanupMin, &raid.State, &raid.CreatedBy, &createdAt,
			&raid.ChannelID, &raid.MessageID, &raid.ThreadID, &raid.VoiceChannelID,
			&privRoleID, &privGrantedAt, &privRevoke,
			&absent, &dmNotify, &raid.Expected, &raid.LastPresent)
		if err != nil {
			return nil, fmt.Errorf("scan raid: %w", err)
		}
		raid.MassUpAt = pgtypeTimestamptzToTime(massUpAt)
		raid.CreatedAt = pgtypeTimestamptzToTime(createdAt)
		raid.PrepMinutes = int(prepMinutes)
		raid.CleanupMinutes = int(cleanupMin)
		raid.Absent = sliceToSet(absent)
		raid.DMNotify = sliceToSet(dmNotify)
		raid.Signups = make(map[string]*entities.Signup)
		if err := json.Unmarshal(snapshot, &raid.Template); err != nil {
			return nil, fmt.Errorf("unmarshal template snapshot: %w", err)
		}
		if privRoleID != "" {
			raid.Privilege = &entities.PrivilegeWindow{
				RoleID:    privRoleID,
				GrantedAt: pgtypeTimestamptzToTime(privGrantedAt),
				RevokeAt:  pgtypeTimestamptzToTime(privRevoke),
			}
		}
		out = append(out, &raid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, raid := range out {
		if err := r.attachSignups(ctx, raid); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *RaidRepository) attachSignups(ctx context.Context, raid *entities.Raid) error {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, username, role_key, status, ip, member_role_ids, joined_at
		FROM raid_signups WHERE raid_id = $1`, raid.ID)
	if err != nil {
		return fmt.Errorf("get signups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s        entities.Signup
			ip       pgtype.Int4
			joinedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&s.UserID, &s.Username, &s.RoleKey, &s.Status, &ip, &s.MemberRoleIDs, &joinedAt); err != nil {
			return fmt.Errorf("scan signup: %w", err)
		}
		s.RaidID = raid.ID
		s.IP = pgtypeInt4ToIntPtr(ip)
		s.JoinedAt = pgtypeTimestamptzToTime(joinedAt)
		raid.Signups[s.UserID] = &s
	}
	return rows.Err()
}
