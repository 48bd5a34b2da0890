package application

import (
	"context"
	"fmt"
	"time"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/input"
	"albionbot/internal/ports/output"
)

type RaidService struct {
	registry  *Registry
	raids     output.RaidRepository
	templates output.TemplateRepository
	lifecycle *Lifecycle
	now       func() time.Time
}

func NewRaidService(
	registry *Registry,
	raids output.RaidRepository,
	templates output.TemplateRepository,
	lifecycle *Lifecycle,
) *RaidService {
	return &RaidService{
		registry:  registry,
		raids:     raids,
		templates: templates,
		lifecycle: lifecycle,
		now:       time.Now,
	}
}

// CreateRaid instantiates a raid from a template snapshot. The mass-up time
// is fixed here; if the template carries a raid_leader role, the creator is
// assigned to it immediately.
func (s *RaidService) CreateRaid(ctx context.Context, params input.CreateRaidParams) (*entities.Raid, error) {
	tpl, err := s.templates.FindByName(ctx, params.GuildID, params.TemplateName)
	if err != nil {
		return nil, domain.ErrTemplateNotFound
	}
	now := s.now()
	if !params.MassUpAt.After(now) {
		return nil, domain.ErrDateTimeInPast
	}

	title := params.Title
	if title == "" {
		title = tpl.Name
	}
	description := params.Description
	if description == "" {
		description = tpl.Description
	}

	raid := &entities.Raid{
		ID:             fmt.Sprintf("R%d", now.UnixMilli()),
		GuildID:        params.GuildID,
		Template:       tpl.Clone(),
		Title:          title,
		Description:    description,
		MassUpAt:       params.MassUpAt,
		PrepMinutes:    params.PrepMinutes,
		CleanupMinutes: params.CleanupMinutes,
		State:          domain.StateOpen,
		CreatedBy:      params.CreatedBy,
		CreatedAt:      now,
		VoiceChannelID: params.VoiceChannelID,
		Signups:        make(map[string]*entities.Signup),
		Absent:         make(map[string]bool),
		DMNotify:       make(map[string]bool),
	}

	if raid.Template.Role(RoleKeyLeader) != nil {
		raid.Signups[params.CreatedBy] = &entities.Signup{
			RaidID:   raid.ID,
			UserID:   params.CreatedBy,
			Username: params.CreatorUsername,
			RoleKey:  RoleKeyLeader,
			Status:   domain.StatusMain,
			JoinedAt: now,
		}
	}

	if err := s.raids.Save(ctx, raid); err != nil {
		return nil, fmt.Errorf("save raid: %w", err)
	}
	s.registry.Add(raid)
	return raid.Snapshot(), nil
}

func (s *RaidService) GetRaid(raidID string) (*entities.Raid, error) {
	return s.registry.Snapshot(raidID)
}

func (s *RaidService) ListRaids(guildID string) []*entities.Raid {
	return s.registry.ByGuild(guildID)
}

func (s *RaidService) SetMessageRefs(ctx context.Context, raidID, channelID, messageID, threadID string) error {
	return s.registry.With(raidID, func(r *entities.Raid) error {
		r.ChannelID = channelID
		r.MessageID = messageID
		r.ThreadID = threadID
		return s.raids.Save(ctx, r)
	})
}

func (s *RaidService) ForceClose(ctx context.Context, raidID string) error {
	return s.lifecycle.ForceClose(ctx, raidID)
}
