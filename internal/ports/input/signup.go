package input

import (
	"context"

	"albionbot/internal/domain"
)

// MemberProfile is the requester's identity and eligibility snapshot at the
// moment of the request.
type MemberProfile struct {
	UserID   string
	Username string
	RoleIDs  []string
}

type SignupUseCase interface {
	// Join requests a slot on roleKey. ip is the declared item power (nil
	// when the role does not require one). The string is a localized reply
	// for the requester.
	Join(ctx context.Context, locale, raidID string, profile MemberProfile, roleKey string, ip *int) (domain.Outcome, string, error)
	// ChangeRole atomically releases the current entry and requests newRole.
	ChangeRole(ctx context.Context, locale, raidID string, profile MemberProfile, newRole string, ip *int) (domain.Outcome, string, error)
	Leave(ctx context.Context, locale, raidID, userID string) (string, error)
	// MarkAbsent toggles the requester's absent flag; marking absent removes
	// any active entry.
	MarkAbsent(ctx context.Context, locale, raidID, userID string) (string, error)
	// ToggleNotify toggles the per-raid mass-up DM opt-in.
	ToggleNotify(ctx context.Context, locale, raidID, userID string) (string, error)
}
