package output

import (
	"context"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
)

// Effects is the outward side-effect port of the raid lifecycle. Every call
// may block on external I/O and must never run under a raid lock; callers
// pass a raid snapshot, not the live instance. Failures are best-effort:
// the lifecycle logs them and advances regardless.
type Effects interface {
	// GrantPrivilege grants temporary access to the given participants and
	// returns the id of the granted temp role. When the raid already carries
	// a privilege window (late signup during prep), the existing role is
	// reused and its id returned.
	GrantPrivilege(ctx context.Context, raid *entities.Raid, userIDs []string) (string, error)

	// RevokePrivilege tears the temp role down. A raid without a privilege
	// window is a no-op.
	RevokePrivilege(ctx context.Context, raid *entities.Raid) error

	// Notify sends message to the raid's channel/thread and DMs the opt-in
	// subset of audience.
	Notify(ctx context.Context, raid *entities.Raid, audience []string, message string) error

	// DeliverReport delivers the attendance report to the organizer through
	// the fallback chain: direct message, then raid thread, then the raid's
	// originating channel, stopping at the first success.
	DeliverReport(ctx context.Context, raid *entities.Raid, report domain.Report) error

	// PresenceSnapshot returns the participant ids currently observed in the
	// raid's voice channel. The bool is false when the raid has no voice
	// channel configured.
	PresenceSnapshot(ctx context.Context, raid *entities.Raid) ([]string, bool, error)

	// RefreshMessage re-renders the raid's roster message. Best effort.
	RefreshMessage(ctx context.Context, raid *entities.Raid)
}
