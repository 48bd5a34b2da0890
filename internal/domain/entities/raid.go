package entities

import (
	"sort"
	"time"

	"albionbot/internal/domain"
)

// PrivilegeWindow is the temporary access granted around mass-up: a temp
// Discord role created at the prep transition and revoked at cleanup.
type PrivilegeWindow struct {
	RoleID    string
	GrantedAt time.Time
	RevokeAt  time.Time
}

// Raid is one scheduled raid instance. Template is a snapshot copied at
// creation. MassUpAt is fixed at creation; once State has reached
// massed_up the signup ledger is frozen.
type Raid struct {
	ID             string
	GuildID        string
	Template       *Template
	Title          string
	Description    string
	MassUpAt       time.Time
	PrepMinutes    int
	CleanupMinutes int
	State          string
	CreatedBy      string
	CreatedAt      time.Time

	ChannelID      string
	MessageID      string
	ThreadID       string
	VoiceChannelID string

	Privilege *PrivilegeWindow

	Signups  map[string]*Signup
	Absent   map[string]bool
	DMNotify map[string]bool

	// Expected is the set of assigned (non-waitlist) participants captured
	// at the moment the raid entered massed_up. It feeds reconciliation.
	Expected []string

	// LastPresent is the present-and-expected partition of the last
	// attendance report.
	LastPresent []string
}

// Snapshot returns a deep copy safe to hand to side-effect code after the
// per-raid lock is released.
func (r *Raid) Snapshot() *Raid {
	cp := *r
	if r.Template != nil {
		cp.Template = r.Template.Clone()
	}
	if r.Privilege != nil {
		p := *r.Privilege
		cp.Privilege = &p
	}
	cp.Signups = make(map[string]*Signup, len(r.Signups))
	for id, s := range r.Signups {
		sc := *s
		sc.MemberRoleIDs = append([]string(nil), s.MemberRoleIDs...)
		if s.IP != nil {
			ip := *s.IP
			sc.IP = &ip
		}
		cp.Signups[id] = &sc
	}
	cp.Absent = make(map[string]bool, len(r.Absent))
	for id := range r.Absent {
		cp.Absent[id] = true
	}
	cp.DMNotify = make(map[string]bool, len(r.DMNotify))
	for id := range r.DMNotify {
		cp.DMNotify[id] = true
	}
	cp.Expected = append([]string(nil), r.Expected...)
	cp.LastPresent = append([]string(nil), r.LastPresent...)
	return &cp
}

// PrepAt is when the privilege window opens.
func (r *Raid) PrepAt() time.Time {
	return r.MassUpAt.Add(-time.Duration(r.PrepMinutes) * time.Minute)
}

// CleanupAt is when the raid closes and the privilege window is revoked.
func (r *Raid) CleanupAt() time.Time {
	return r.MassUpAt.Add(time.Duration(r.CleanupMinutes) * time.Minute)
}

// Frozen reports whether signup mutation is rejected (state >= massed_up).
func (r *Raid) Frozen() bool {
	return domain.StateAtLeast(r.State, domain.StateMassedUp)
}

// Closed reports whether the raid reached its terminal state.
func (r *Raid) Closed() bool {
	return r.State == domain.StateClosed
}

// CountAssigned returns the number of main (non-waitlist) entries for a role.
func (r *Raid) CountAssigned(roleKey string) int {
	n := 0
	for _, s := range r.Signups {
		if s.RoleKey == roleKey && s.Status == domain.StatusMain {
			n++
		}
	}
	return n
}

// Waitlist returns the waitlisted entries for a role in promotion order:
// join timestamp first, participant id as the deterministic tiebreak.
func (r *Raid) Waitlist(roleKey string) []*Signup {
	var out []*Signup
	for _, s := range r.Signups {
		if s.RoleKey == roleKey && s.Status == domain.StatusWait {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// AssignedIDs returns the sorted ids of all main entries, absent excluded.
func (r *Raid) AssignedIDs() []string {
	var out []string
	for _, s := range r.Signups {
		if s.Status == domain.StatusMain && !r.Absent[s.UserID] {
			out = append(out, s.UserID)
		}
	}
	sort.Strings(out)
	return out
}

// ParticipantIDs returns the sorted ids of every entry (main and waitlist),
// absent excluded.
func (r *Raid) ParticipantIDs() []string {
	var out []string
	for _, s := range r.Signups {
		if !r.Absent[s.UserID] {
			out = append(out, s.UserID)
		}
	}
	sort.Strings(out)
	return out
}
