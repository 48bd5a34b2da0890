package domain

// Outcome kinds for a signup request.
const (
	OutcomeAssigned   = "assigned"
	OutcomeWaitlisted = "waitlisted"
	OutcomeRejected   = "rejected"
)

// Outcome is the result of a join / role-change request.
// Position is the 1-based waitlist position when Kind is OutcomeWaitlisted.
// Reason carries the domain error when Kind is OutcomeRejected.
type Outcome struct {
	Kind     string
	RoleKey  string
	Position int
	Reason   error
}

func Assigned(roleKey string) Outcome {
	return Outcome{Kind: OutcomeAssigned, RoleKey: roleKey}
}

func Waitlisted(roleKey string, position int) Outcome {
	return Outcome{Kind: OutcomeWaitlisted, RoleKey: roleKey, Position: position}
}

func Rejected(reason error) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}
