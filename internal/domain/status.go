package domain

// Signup statuses.
const (
	StatusMain = "main"
	StatusWait = "wait"
)

// Raid lifecycle states, in transition order.
const (
	StateOpen       = "open"
	StatePrep       = "prep"
	StateMassedUp   = "massed_up"
	StateReconciled = "reconciled"
	StateClosed     = "closed"
)

var stateRank = map[string]int{
	StateOpen:       0,
	StatePrep:       1,
	StateMassedUp:   2,
	StateReconciled: 3,
	StateClosed:     4,
}

// StateRank returns the position of state in the lifecycle order.
// Unknown states rank below StateOpen.
func StateRank(state string) int {
	if r, ok := stateRank[state]; ok {
		return r
	}
	return -1
}

// StateAtLeast reports whether state has reached want in the lifecycle order.
func StateAtLeast(state, want string) bool {
	return StateRank(state) >= StateRank(want)
}
