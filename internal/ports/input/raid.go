package input

import (
	"context"
	"time"

	"albionbot/internal/domain/entities"
)

type CreateRaidParams struct {
	GuildID         string
	TemplateName    string
	Title           string
	Description     string
	MassUpAt        time.Time
	PrepMinutes     int
	CleanupMinutes  int
	VoiceChannelID  string
	CreatedBy       string
	CreatorUsername string
}

type RaidUseCase interface {
	CreateRaid(ctx context.Context, params CreateRaidParams) (*entities.Raid, error)
	// GetRaid returns a snapshot of a live raid.
	GetRaid(raidID string) (*entities.Raid, error)
	// ListRaids returns snapshots of the guild's live raids, newest first.
	ListRaids(guildID string) []*entities.Raid
	// SetMessageRefs attaches the posted roster message to the raid.
	SetMessageRefs(ctx context.Context, raidID, channelID, messageID, threadID string) error
	// ForceClose short-circuits a raid to its terminal state from any
	// non-terminal state.
	ForceClose(ctx context.Context, raidID string) error
}
