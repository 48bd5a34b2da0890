package entities

import "time"

// Signup is one participant's active entry on a raid: a role slot or a
// waitlist position, never both. IP and MemberRoleIDs are the eligibility
// snapshot taken at join time; they are never re-checked afterwards.
type Signup struct {
	RaidID        string
	UserID        string
	Username      string
	RoleKey       string
	Status        string // domain.StatusMain or domain.StatusWait
	IP            *int
	MemberRoleIDs []string
	JoinedAt      time.Time
}
