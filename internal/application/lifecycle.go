package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/output"
)

type transition int

const (
	transitionNone transition = iota
	transitionPrep
	transitionMassUp
	transitionReconcile
	transitionClose
)

// Lifecycle owns the timed state transitions of a raid:
// open → prep → massed_up → reconciled → closed. The state field is the
// single source of truth; a transition is applied at most once. State
// changes happen under the per-raid lock, side effects outside it.
type Lifecycle struct {
	registry        *Registry
	raids           output.RaidRepository
	effects         output.Effects
	translator      output.T
	attendanceDelay time.Duration
	now             func() time.Time
}

func NewLifecycle(
	registry *Registry,
	raids output.RaidRepository,
	effects output.Effects,
	translator output.T,
	attendanceDelay time.Duration,
) *Lifecycle {
	return &Lifecycle{
		registry:        registry,
		raids:           raids,
		effects:         effects,
		translator:      translator,
		attendanceDelay: attendanceDelay,
		now:             time.Now,
	}
}

// Advance applies every due transition for one raid, in state order, each
// with its full side effects. A raid that slept through several thresholds
// catches up one transition at a time.
func (m *Lifecycle) Advance(ctx context.Context, raidID string) error {
	for {
		t, snap, err := m.applyNext(ctx, raidID)
		if errors.Is(err, domain.ErrRaidNotFound) {
			// Closed concurrently; nothing left to drive.
			return nil
		}
		if err != nil {
			return err
		}
		if t == transitionNone {
			return nil
		}
		m.fire(ctx, t, snap)
	}
}

// ForceClose short-circuits to the terminal state from any non-terminal
// state, skipping reconciliation if not yet reached.
func (m *Lifecycle) ForceClose(ctx context.Context, raidID string) error {
	var snap *entities.Raid
	err := m.registry.With(raidID, func(r *entities.Raid) error {
		if r.Closed() {
			return domain.ErrRaidClosed
		}
		r.State = domain.StateClosed
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}
	m.close(ctx, snap)
	return nil
}

// applyNext applies at most one due transition under the raid lock and
// returns a snapshot for the side-effect phase.
func (m *Lifecycle) applyNext(ctx context.Context, raidID string) (transition, *entities.Raid, error) {
	var (
		t    transition
		snap *entities.Raid
	)
	err := m.registry.With(raidID, func(r *entities.Raid) error {
		now := m.now()
		switch {
		case r.State == domain.StateOpen && !now.Before(r.PrepAt()):
			r.State = domain.StatePrep
			t = transitionPrep
		case r.State == domain.StatePrep && !now.Before(r.MassUpAt):
			// Freeze point: the ledger rejects mutation from here on, and
			// the expected set for reconciliation is fixed now.
			r.State = domain.StateMassedUp
			r.Expected = r.AssignedIDs()
			t = transitionMassUp
		case r.State == domain.StateMassedUp && !now.Before(r.MassUpAt.Add(m.attendanceDelay)):
			r.State = domain.StateReconciled
			t = transitionReconcile
		case r.State == domain.StateReconciled && !now.Before(r.CleanupAt()):
			r.State = domain.StateClosed
			t = transitionClose
		default:
			return nil
		}
		snap = r.Snapshot()
		return m.raids.Save(ctx, r)
	})
	return t, snap, err
}

// fire runs one transition's side effects. Failures are logged and never
// roll the state back; the timed transition is authoritative.
func (m *Lifecycle) fire(ctx context.Context, t transition, snap *entities.Raid) {
	switch t {
	case transitionPrep:
		roleID, err := m.effects.GrantPrivilege(ctx, snap, snap.ParticipantIDs())
		if err != nil {
			slog.Error("privilege grant failed", "raid", snap.ID, "error", err)
		} else if roleID != "" {
			m.storePrivilege(ctx, snap.ID, roleID, snap.CleanupAt())
		}
		m.notify(ctx, snap, snap.ParticipantIDs(), "notify.prep")
		m.effects.RefreshMessage(ctx, snap)

	case transitionMassUp:
		m.notify(ctx, snap, snap.ParticipantIDs(), "notify.massup")
		m.effects.RefreshMessage(ctx, snap)

	case transitionReconcile:
		m.reconcile(ctx, snap)

	case transitionClose:
		m.close(ctx, snap)
	}
}

func (m *Lifecycle) reconcile(ctx context.Context, snap *entities.Raid) {
	observed, hasVoice, err := m.effects.PresenceSnapshot(ctx, snap)
	if err != nil {
		slog.Error("presence snapshot failed", "raid", snap.ID, "error", err)
		observed = nil
	}
	var report domain.Report
	if hasVoice {
		report = domain.Reconcile(snap.Expected, observed)
	} else {
		// No voice channel configured: signups are taken as present.
		report = domain.Report{PresentExpected: append([]string(nil), snap.Expected...)}
	}
	if err := m.effects.DeliverReport(ctx, snap, report); err != nil {
		slog.Error("attendance report delivery failed", "raid", snap.ID, "error", err)
	}
	err = m.registry.With(snap.ID, func(r *entities.Raid) error {
		r.LastPresent = append([]string(nil), report.PresentExpected...)
		return m.raids.Save(ctx, r)
	})
	if err != nil && !errors.Is(err, domain.ErrRaidNotFound) {
		slog.Error("attendance result store failed", "raid", snap.ID, "error", err)
	}
}

func (m *Lifecycle) close(ctx context.Context, snap *entities.Raid) {
	if err := m.effects.RevokePrivilege(ctx, snap); err != nil {
		slog.Error("privilege revoke failed", "raid", snap.ID, "error", err)
	}
	m.effects.RefreshMessage(ctx, snap)
	m.registry.Remove(snap.ID)
	if err := m.raids.Delete(ctx, snap.ID); err != nil {
		slog.Error("raid delete failed", "raid", snap.ID, "error", err)
	}
}

func (m *Lifecycle) notify(ctx context.Context, snap *entities.Raid, audience []string, key string) {
	msg := m.translator.T("", key, map[string]any{"Title": snap.Title, "ID": snap.ID})
	if err := m.effects.Notify(ctx, snap, audience, msg); err != nil {
		slog.Error("notification failed", "raid", snap.ID, "key", key, "error", err)
	}
}

// storePrivilege records the granted window once the external grant call
// succeeded; the grant runs outside the lock, so the raid may have closed
// in between.
func (m *Lifecycle) storePrivilege(ctx context.Context, raidID, roleID string, revokeAt time.Time) {
	err := m.registry.With(raidID, func(r *entities.Raid) error {
		r.Privilege = &entities.PrivilegeWindow{
			RoleID:    roleID,
			GrantedAt: m.now(),
			RevokeAt:  revokeAt,
		}
		return m.raids.Save(ctx, r)
	})
	if err != nil && !errors.Is(err, domain.ErrRaidNotFound) {
		slog.Error("privilege window store failed", "raid", raidID, "error", err)
	}
}
