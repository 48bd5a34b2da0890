package application

import (
	"context"
	"log/slog"
	"time"

	"albionbot/internal/domain"
	"albionbot/internal/domain/entities"
	"albionbot/internal/ports/input"
	"albionbot/internal/ports/output"
)

// Item power bounds accepted for a declared IP.
const (
	MinIP = 0
	MaxIP = 2500
)

// RoleKeyLeader is reserved for the raid creator.
const RoleKeyLeader = "raid_leader"

// SignupService is the allocation engine: it decides, under the per-raid
// lock, whether a join/leave/role-change assigns a slot, waitlists, or
// rejects, and promotes waitlisted participants when a slot frees.
type SignupService struct {
	registry   *Registry
	raids      output.RaidRepository
	effects    output.Effects
	translator output.T
	now        func() time.Time
}

func NewSignupService(
	registry *Registry,
	raids output.RaidRepository,
	effects output.Effects,
	translator output.T,
) *SignupService {
	return &SignupService{
		registry:   registry,
		raids:      raids,
		effects:    effects,
		translator: translator,
		now:        time.Now,
	}
}

func (s *SignupService) Join(ctx context.Context, locale, raidID string, profile input.MemberProfile, roleKey string, ip *int) (domain.Outcome, string, error) {
	var (
		outcome   domain.Outcome
		replyKey  string
		replyData map[string]any
		snap      *entities.Raid
		lateGrant bool
	)

	err := s.registry.With(raidID, func(r *entities.Raid) error {
		if r.Frozen() {
			return domain.ErrSignupsClosed
		}
		role := r.Template.Role(roleKey)
		if role == nil {
			return domain.ErrRoleNotFound
		}
		if roleKey == RoleKeyLeader && profile.UserID != r.CreatedBy {
			return domain.ErrLeaderLocked
		}
		if cur := r.Signups[profile.UserID]; cur != nil {
			if cur.RoleKey != roleKey {
				return domain.ErrAlreadySignedUp
			}
			// Re-selecting the held role keeps the seat and the queue
			// position; only the IP declaration is refreshed.
			if ip == nil {
				ip = cur.IP
			}
			if err := checkEligibility(r, role, profile, ip); err != nil {
				return err
			}
			cur.IP = ip
			outcome = currentOutcome(r, cur)
		} else {
			if err := checkEligibility(r, role, profile, ip); err != nil {
				return err
			}
			outcome = s.place(r, role, profile, ip)
			delete(r.Absent, profile.UserID)
			recomputePromotions(r)
			if r.State == domain.StatePrep {
				lateGrant = true
			}
		}
		snap = r.Snapshot()
		replyKey, replyData = joinReply(outcome, role)
		return s.raids.Save(ctx, r)
	})
	if err != nil {
		return domain.Rejected(err), s.rejectionReply(locale, err), err
	}

	if lateGrant {
		s.grantLate(ctx, snap.ID, profile.UserID)
	}
	s.effects.RefreshMessage(ctx, snap)
	return outcome, s.translator.T(locale, replyKey, replyData), nil
}

func (s *SignupService) ChangeRole(ctx context.Context, locale, raidID string, profile input.MemberProfile, newRole string, ip *int) (domain.Outcome, string, error) {
	var (
		outcome   domain.Outcome
		replyKey  string
		replyData map[string]any
		snap      *entities.Raid
	)

	err := s.registry.With(raidID, func(r *entities.Raid) error {
		if r.Frozen() {
			return domain.ErrSignupsClosed
		}
		cur := r.Signups[profile.UserID]
		if cur == nil {
			return domain.ErrNotSignedUp
		}
		if cur.RoleKey == RoleKeyLeader {
			return domain.ErrLeaderLocked
		}
		role := r.Template.Role(newRole)
		if role == nil {
			return domain.ErrRoleNotFound
		}
		if newRole == RoleKeyLeader {
			return domain.ErrLeaderLocked
		}
		if ip == nil {
			ip = cur.IP
		}
		if err := checkEligibility(r, role, profile, ip); err != nil {
			return err
		}

		// Release + request as one step: the old slot frees, the new entry
		// lands, and promotions cascade, all under the same lock.
		delete(r.Signups, profile.UserID)
		outcome = s.place(r, role, profile, ip)
		recomputePromotions(r)
		snap = r.Snapshot()
		replyKey, replyData = joinReply(outcome, role)
		return s.raids.Save(ctx, r)
	})
	if err != nil {
		return domain.Rejected(err), s.rejectionReply(locale, err), err
	}

	s.effects.RefreshMessage(ctx, snap)
	return outcome, s.translator.T(locale, replyKey, replyData), nil
}

func (s *SignupService) Leave(ctx context.Context, locale, raidID, userID string) (string, error) {
	var snap *entities.Raid

	err := s.registry.With(raidID, func(r *entities.Raid) error {
		if r.Frozen() {
			return domain.ErrSignupsClosed
		}
		cur := r.Signups[userID]
		if cur == nil && !r.Absent[userID] {
			return domain.ErrNotSignedUp
		}
		if cur != nil && cur.RoleKey == RoleKeyLeader {
			return domain.ErrLeaderLocked
		}
		delete(r.Signups, userID)
		delete(r.Absent, userID)
		recomputePromotions(r)
		snap = r.Snapshot()
		return s.raids.Save(ctx, r)
	})
	if err != nil {
		return s.rejectionReply(locale, err), err
	}

	s.effects.RefreshMessage(ctx, snap)
	return s.translator.T(locale, "reply.leave.ok", nil), nil
}

func (s *SignupService) MarkAbsent(ctx context.Context, locale, raidID, userID string) (string, error) {
	var (
		snap     *entities.Raid
		replyKey string
	)

	err := s.registry.With(raidID, func(r *entities.Raid) error {
		if r.Frozen() {
			return domain.ErrSignupsClosed
		}
		if cur := r.Signups[userID]; cur != nil && cur.RoleKey == RoleKeyLeader {
			return domain.ErrLeaderLocked
		}
		if r.Absent[userID] {
			delete(r.Absent, userID)
			replyKey = "reply.absent.off"
		} else {
			r.Absent[userID] = true
			delete(r.Signups, userID)
			recomputePromotions(r)
			replyKey = "reply.absent.on"
		}
		snap = r.Snapshot()
		return s.raids.Save(ctx, r)
	})
	if err != nil {
		return s.rejectionReply(locale, err), err
	}

	s.effects.RefreshMessage(ctx, snap)
	return s.translator.T(locale, replyKey, nil), nil
}

func (s *SignupService) ToggleNotify(ctx context.Context, locale, raidID, userID string) (string, error) {
	var replyKey string

	err := s.registry.With(raidID, func(r *entities.Raid) error {
		if r.Frozen() {
			return domain.ErrSignupsClosed
		}
		if r.DMNotify[userID] {
			delete(r.DMNotify, userID)
			replyKey = "reply.notify.off"
		} else {
			r.DMNotify[userID] = true
			replyKey = "reply.notify.on"
		}
		return s.raids.Save(ctx, r)
	})
	if err != nil {
		return s.rejectionReply(locale, err), err
	}
	return s.translator.T(locale, replyKey, nil), nil
}

// place assigns a free slot or appends to the role's waitlist. Caller holds
// the raid lock and has already validated eligibility.
func (s *SignupService) place(r *entities.Raid, role *entities.RoleDef, profile input.MemberProfile, ip *int) domain.Outcome {
	status := domain.StatusMain
	if r.CountAssigned(role.Key) >= role.Slots {
		status = domain.StatusWait
	}
	r.Signups[profile.UserID] = &entities.Signup{
		RaidID:        r.ID,
		UserID:        profile.UserID,
		Username:      profile.Username,
		RoleKey:       role.Key,
		Status:        status,
		IP:            ip,
		MemberRoleIDs: append([]string(nil), profile.RoleIDs...),
		JoinedAt:      s.now(),
	}
	if status == domain.StatusWait {
		for i, w := range r.Waitlist(role.Key) {
			if w.UserID == profile.UserID {
				return domain.Waitlisted(role.Key, i+1)
			}
		}
	}
	return domain.Assigned(role.Key)
}

// currentOutcome reports the outcome matching an existing entry without
// moving it.
func currentOutcome(r *entities.Raid, cur *entities.Signup) domain.Outcome {
	if cur.Status == domain.StatusWait {
		for i, w := range r.Waitlist(cur.RoleKey) {
			if w.UserID == cur.UserID {
				return domain.Waitlisted(cur.RoleKey, i+1)
			}
		}
	}
	return domain.Assigned(cur.RoleKey)
}

// grantLate extends the privilege window to a participant who joined during
// prep. The window may be written by the prep transition concurrently, so it
// is re-read under the lock before granting; a duplicate temp role created
// by losing that race is dropped and the grant replayed on the recorded one.
func (s *SignupService) grantLate(ctx context.Context, raidID, userID string) {
	for attempt := 0; attempt < 2; attempt++ {
		cur, err := s.registry.Snapshot(raidID)
		if err != nil {
			return
		}
		roleID, err := s.effects.GrantPrivilege(ctx, cur, []string{userID})
		if err != nil {
			slog.Error("late privilege grant failed", "raid", raidID, "user", userID, "error", err)
			return
		}
		if cur.Privilege != nil || roleID == "" {
			return
		}
		var spare string
		err = s.registry.With(raidID, func(r *entities.Raid) error {
			if r.Privilege != nil {
				if r.Privilege.RoleID != roleID {
					spare = roleID
				}
				return nil
			}
			r.Privilege = &entities.PrivilegeWindow{
				RoleID:    roleID,
				GrantedAt: s.now(),
				RevokeAt:  r.CleanupAt(),
			}
			return s.raids.Save(ctx, r)
		})
		if err != nil {
			slog.Error("privilege window store failed", "raid", raidID, "error", err)
			return
		}
		if spare == "" {
			return
		}
		ghost := cur.Snapshot()
		ghost.Privilege = &entities.PrivilegeWindow{RoleID: spare}
		if err := s.effects.RevokePrivilege(ctx, ghost); err != nil {
			slog.Error("duplicate privilege role cleanup failed", "raid", raidID, "role", spare, "error", err)
		}
	}
}

func (s *SignupService) rejectionReply(locale string, err error) string {
	code := domain.Code(err)
	if code == "" {
		return ""
	}
	return s.translator.T(locale, "errors."+code, nil)
}

func joinReply(outcome domain.Outcome, role *entities.RoleDef) (string, map[string]any) {
	if outcome.Kind == domain.OutcomeWaitlisted {
		return "reply.join.waitlisted", map[string]any{"Role": role.Label, "Position": outcome.Position}
	}
	return "reply.join.assigned", map[string]any{"Role": role.Label}
}

func checkEligibility(r *entities.Raid, role *entities.RoleDef, profile input.MemberProfile, ip *int) error {
	if len(r.Template.RaidRequiredRoleIDs) > 0 && !hasAnyRole(profile.RoleIDs, r.Template.RaidRequiredRoleIDs) {
		return domain.ErrMissingGuildRole
	}
	if len(role.RequiredRoleIDs) > 0 && !hasAnyRole(profile.RoleIDs, role.RequiredRoleIDs) {
		return domain.ErrMissingGuildRole
	}
	if role.IPRequired {
		if ip == nil {
			return domain.ErrIPRequired
		}
		if *ip < MinIP || *ip > MaxIP {
			return domain.ErrIPOutOfRange
		}
		if role.MinIP > 0 && *ip < role.MinIP {
			return domain.ErrIPTooLow
		}
	}
	return nil
}

func hasAnyRole(memberRoles, required []string) bool {
	for _, want := range required {
		for _, have := range memberRoles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// recomputePromotions fills every free slot from the role's waitlist in
// FIFO order (join timestamp, then user id). Absent members are skipped;
// eligibility is NOT re-checked at promotion time.
func recomputePromotions(r *entities.Raid) {
	if r.Template == nil {
		return
	}
	for _, role := range r.Template.Roles {
		free := role.Slots - r.CountAssigned(role.Key)
		for free > 0 {
			promoted := false
			for _, s := range r.Waitlist(role.Key) {
				if r.Absent[s.UserID] {
					continue
				}
				s.Status = domain.StatusMain
				promoted = true
				break
			}
			if !promoted {
				break
			}
			free--
		}
	}
}
