package application

import (
	"context"
	"sort"
	"sync"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
)

type raidHandle struct {
	mu   sync.Mutex
	raid *entities.Raid
}

// Registry is the process-wide table of live raid instances. Every mutation
// of one raid (ledger or lifecycle state) runs under that raid's handle
// lock via With; different raids are fully independent.
type Registry struct {
	mu    sync.RWMutex
	raids map[string]*raidHandle
}

func NewRegistry() *Registry {
	return &Registry{raids: make(map[string]*raidHandle)}
}

// Load populates the registry from storage at startup.
func (g *Registry) Load(ctx context.Context, repo output.RaidRepository) error {
	raids, err := repo.FindActive(ctx)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range raids {
		g.raids[r.ID] = &raidHandle{raid: r}
	}
	return nil
}

func (g *Registry) Add(raid *entities.Raid) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raids[raid.ID] = &raidHandle{raid: raid}
}

func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.raids, id)
}

// IDs returns the ids of all registered raids.
func (g *Registry) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.raids))
	for id := range g.raids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// With runs fn on the raid under its per-raid lock. fn must not block on
// external I/O; snapshot inside and do the I/O after. When fn returns an
// error its mutations are rolled back, so a failed persist leaves the
// in-memory raid at its prior state and a timed transition can retry.
func (g *Registry) With(id string, fn func(raid *entities.Raid) error) error {
	g.mu.RLock()
	h, ok := g.raids[id]
	g.mu.RUnlock()
	if !ok {
		return domain.ErrRaidNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	backup := h.raid.Snapshot()
	if err := fn(h.raid); err != nil {
		h.raid = backup
		return err
	}
	return nil
}

// Snapshot returns a deep copy of one raid.
func (g *Registry) Snapshot(id string) (*entities.Raid, error) {
	var snap *entities.Raid
	err := g.With(id, func(r *entities.Raid) error {
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ByGuild returns snapshots of the guild's raids, newest first.
func (g *Registry) ByGuild(guildID string) []*entities.Raid {
	g.mu.RLock()
	handles := make([]*raidHandle, 0, len(g.raids))
	for _, h := range g.raids {
		handles = append(handles, h)
	}
	g.mu.RUnlock()

	var out []*entities.Raid
	for _, h := range handles {
		h.mu.Lock()
		if h.raid.GuildID == guildID {
			out = append(out, h.raid.Snapshot())
		}
		h.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
