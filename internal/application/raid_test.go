package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albionbot/internal/domain"
	"albionbot/internal/ports/input"
)

func newRaidFixture(t *testing.T) (*RaidService, *Registry, *fakeRaidRepo, func(time.Time)) {
	t.Helper()
	registry := NewRegistry()
	repo := newFakeRaidRepo()
	effects := newFakeEffects()
	lc := NewLifecycle(registry, repo, effects, keyTranslator{}, 5*time.Minute)
	svc := NewRaidService(registry, repo, seededTemplateRepo(t), lc)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, registry, repo, func(tm time.Time) { current = tm }
}

func seededTemplateRepo(t *testing.T) *fakeTemplateRepo {
	t.Helper()
	repo := newFakeTemplateRepo()
	require.NoError(t, repo.Save(context.Background(), smallTemplate()))
	return repo
}

func createParams(massUpAt time.Time) input.CreateRaidParams {
	return input.CreateRaidParams{
		GuildID:         "g1",
		TemplateName:    "zvz5",
		MassUpAt:        massUpAt,
		PrepMinutes:     10,
		CleanupMinutes:  30,
		CreatedBy:       "leader",
		CreatorUsername: "Chef",
	}
}

func TestCreateRaidSnapshotsTemplateAndSeatsLeader(t *testing.T) {
	svc, registry, repo, _ := newRaidFixture(t)
	massUpAt := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	raid, err := svc.CreateRaid(context.Background(), createParams(massUpAt))
	require.NoError(t, err)

	wantID := fmt.Sprintf("R%d", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli())
	assert.Equal(t, wantID, raid.ID)
	assert.Equal(t, domain.StateOpen, raid.State)
	// Le titre et la description retombent sur ceux du template.
	assert.Equal(t, "zvz5", raid.Title)

	leader, ok := raid.Signups["leader"]
	require.True(t, ok)
	assert.Equal(t, RoleKeyLeader, leader.RoleKey)
	assert.Equal(t, domain.StatusMain, leader.Status)

	_, err = registry.Snapshot(raid.ID)
	assert.NoError(t, err)
	repo.mu.Lock()
	_, persisted := repo.saved[raid.ID]
	repo.mu.Unlock()
	assert.True(t, persisted)
}

func TestCreateRaidRejectsPastMassUp(t *testing.T) {
	svc, _, _, _ := newRaidFixture(t)

	_, err := svc.CreateRaid(context.Background(), createParams(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, domain.ErrDateTimeInPast)
}

func TestCreateRaidUnknownTemplate(t *testing.T) {
	svc, _, _, _ := newRaidFixture(t)

	params := createParams(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC))
	params.TemplateName = "inconnu"
	_, err := svc.CreateRaid(context.Background(), params)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestCreateRaidIsImmuneToLaterTemplateEdits(t *testing.T) {
	registry := NewRegistry()
	repo := newFakeRaidRepo()
	templates := seededTemplateRepo(t)
	lc := NewLifecycle(registry, repo, newFakeEffects(), keyTranslator{}, 5*time.Minute)
	svc := NewRaidService(registry, repo, templates, lc)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	raid, err := svc.CreateRaid(context.Background(), createParams(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// Réécriture du template après coup: le raid garde son instantané.
	mutated := smallTemplate()
	mutated.Roles = mutated.Roles[:1]
	require.NoError(t, templates.Save(context.Background(), mutated))

	snap, err := registry.Snapshot(raid.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Template.Roles, 4)
}

func TestSetMessageRefs(t *testing.T) {
	svc, registry, _, _ := newRaidFixture(t)

	raid, err := svc.CreateRaid(context.Background(), createParams(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	require.NoError(t, svc.SetMessageRefs(context.Background(), raid.ID, "chan1", "msg1", "thread1"))

	snap, err := registry.Snapshot(raid.ID)
	require.NoError(t, err)
	assert.Equal(t, "chan1", snap.ChannelID)
	assert.Equal(t, "msg1", snap.MessageID)
	assert.Equal(t, "thread1", snap.ThreadID)
}

func TestListRaidsNewestFirstPerGuild(t *testing.T) {
	svc, _, _, setNow := newRaidFixture(t)
	ctx := context.Background()

	first, err := svc.CreateRaid(ctx, createParams(time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	setNow(time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))
	second, err := svc.CreateRaid(ctx, createParams(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	raids := svc.ListRaids("g1")
	require.Len(t, raids, 2)
	assert.Equal(t, second.ID, raids[0].ID)
	assert.Equal(t, first.ID, raids[1].ID)

	assert.Empty(t, svc.ListRaids("autre-guilde"))
}
