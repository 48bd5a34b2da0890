package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/input"
)

// keyTranslator renders every message as its key, so assertions can match
// on message ids instead of localized text.
type keyTranslator struct{}

func (keyTranslator) T(locale, key string, data map[string]any) string { return key }

type fakeRaidRepo struct {
	mu      sync.Mutex
	saved   map[string]*entities.Raid
	deleted []string
	saveErr map[string]error
}

func newFakeRaidRepo() *fakeRaidRepo {
	return &fakeRaidRepo{
		saved:   make(map[string]*entities.Raid),
		saveErr: make(map[string]error),
	}
}

func (f *fakeRaidRepo) Save(ctx context.Context, raid *entities.Raid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[raid.ID]; err != nil {
		return err
	}
	f.saved[raid.ID] = raid.Snapshot()
	return nil
}

func (f *fakeRaidRepo) FindByID(ctx context.Context, id string) (*entities.Raid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrRaidNotFound
	}
	return r.Snapshot(), nil
}

func (f *fakeRaidRepo) FindActive(ctx context.Context) ([]*entities.Raid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Raid
	for _, r := range f.saved {
		if !r.Closed() {
			out = append(out, r.Snapshot())
		}
	}
	return out, nil
}

func (f *fakeRaidRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type grantCall struct {
	raidID  string
	userIDs []string
}

type fakeEffects struct {
	mu           sync.Mutex
	roleID       string
	grants       []grantCall
	revoked      []string
	revokedRoles []string
	notified     []string
	reports      []domain.Report
	presence     []string
	hasVoice     bool
	presenceErr  error
	refreshed    int
	onGrant      func()
}

func newFakeEffects() *fakeEffects {
	return &fakeEffects{roleID: "temp-role-1"}
}

func (f *fakeEffects) GrantPrivilege(ctx context.Context, raid *entities.Raid, userIDs []string) (string, error) {
	f.mu.Lock()
	f.grants = append(f.grants, grantCall{raidID: raid.ID, userIDs: append([]string(nil), userIDs...)})
	roleID, hook := f.roleID, f.onGrant
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return roleID, nil
}

func (f *fakeEffects) RevokePrivilege(ctx context.Context, raid *entities.Raid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, raid.ID)
	if raid.Privilege != nil {
		f.revokedRoles = append(f.revokedRoles, raid.Privilege.RoleID)
	}
	return nil
}

func (f *fakeEffects) Notify(ctx context.Context, raid *entities.Raid, audience []string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, message)
	return nil
}

func (f *fakeEffects) DeliverReport(ctx context.Context, raid *entities.Raid, report domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeEffects) PresenceSnapshot(ctx context.Context, raid *entities.Raid) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.presence...), f.hasVoice, f.presenceErr
}

func (f *fakeEffects) RefreshMessage(ctx context.Context, raid *entities.Raid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
}

func (f *fakeEffects) grantCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grants)
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*entities.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]*entities.Template)}
}

func templateKey(guildID, name string) string { return guildID + "/" + name }

func (f *fakeTemplateRepo) Save(ctx context.Context, tpl *entities.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates[templateKey(tpl.GuildID, tpl.Name)] = tpl.Clone()
	return nil
}

func (f *fakeTemplateRepo) FindByName(ctx context.Context, guildID, name string) (*entities.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tpl, ok := f.templates[templateKey(guildID, name)]
	if !ok {
		return nil, fmt.Errorf("template %q absent", name)
	}
	return tpl.Clone(), nil
}

func (f *fakeTemplateRepo) FindByGuildID(ctx context.Context, guildID string) ([]entities.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Template
	for _, tpl := range f.templates {
		if tpl.GuildID == guildID {
			out = append(out, *tpl.Clone())
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, guildID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.templates, templateKey(guildID, name))
	return nil
}

func smallTemplate() *entities.Template {
	return &entities.Template{
		GuildID: "g1",
		Name:    "zvz5",
		Roles: []entities.RoleDef{
			{Key: "raid_leader", Label: "Raid Leader", Slots: 1},
			{Key: "tank", Label: "Tank", Slots: 1},
			{Key: "healer", Label: "Healer", Slots: 1, IPRequired: true, MinIP: 1400},
			{Key: "dps", Label: "DPS", Slots: 3},
		},
	}
}

func newTestRaid(id string, massUpAt time.Time) *entities.Raid {
	return &entities.Raid{
		ID:             id,
		GuildID:        "g1",
		Template:       smallTemplate(),
		Title:          "ZvZ du soir",
		MassUpAt:       massUpAt,
		PrepMinutes:    10,
		CleanupMinutes: 30,
		State:          domain.StateOpen,
		CreatedBy:      "leader",
		CreatedAt:      massUpAt.Add(-time.Hour),
		Signups:        make(map[string]*entities.Signup),
		Absent:         make(map[string]bool),
		DMNotify:       make(map[string]bool),
	}
}

func member(userID string) input.MemberProfile {
	return input.MemberProfile{UserID: userID, Username: "membre-" + userID}
}

func intPtr(v int) *int { return &v }
