package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albionbot/internal/domain"
)

func sampleRaid() *Raid {
	base := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	return &Raid{
		ID:      "R1",
		GuildID: "g1",
		Template: &Template{
			GuildID: "g1",
			Name:    "zvz5",
			Roles: []RoleDef{
				{Key: "tank", Label: "Tank", Slots: 1},
				{Key: "dps", Label: "DPS", Slots: 2},
			},
		},
		MassUpAt:       base,
		PrepMinutes:    10,
		CleanupMinutes: 30,
		State:          domain.StateOpen,
		Signups: map[string]*Signup{
			"u1": {UserID: "u1", RoleKey: "tank", Status: domain.StatusMain, JoinedAt: base.Add(-30 * time.Minute)},
			"u2": {UserID: "u2", RoleKey: "tank", Status: domain.StatusWait, JoinedAt: base.Add(-20 * time.Minute)},
			"u3": {UserID: "u3", RoleKey: "tank", Status: domain.StatusWait, JoinedAt: base.Add(-25 * time.Minute)},
			"u4": {UserID: "u4", RoleKey: "dps", Status: domain.StatusMain, JoinedAt: base.Add(-10 * time.Minute)},
		},
		Absent:   map[string]bool{"u4": true},
		DMNotify: map[string]bool{"u1": true},
	}
}

func TestWaitlistOrdering(t *testing.T) {
	r := sampleRaid()

	wait := r.Waitlist("tank")
	require.Len(t, wait, 2)
	assert.Equal(t, "u3", wait[0].UserID)
	assert.Equal(t, "u2", wait[1].UserID)

	// Égalité d'horodatage: départage par id.
	r.Signups["u2"].JoinedAt = r.Signups["u3"].JoinedAt
	wait = r.Waitlist("tank")
	assert.Equal(t, "u2", wait[0].UserID)
}

func TestAssignedIDsExcludesWaitlistAndAbsent(t *testing.T) {
	r := sampleRaid()

	// u4 est inscrit main mais marqué absent.
	assert.Equal(t, []string{"u1"}, r.AssignedIDs())
	assert.Equal(t, []string{"u1", "u2", "u3"}, r.ParticipantIDs())
}

func TestPrepAndCleanupWindows(t *testing.T) {
	r := sampleRaid()

	assert.Equal(t, r.MassUpAt.Add(-10*time.Minute), r.PrepAt())
	assert.Equal(t, r.MassUpAt.Add(30*time.Minute), r.CleanupAt())
}

func TestFrozenStates(t *testing.T) {
	r := sampleRaid()

	for state, want := range map[string]bool{
		domain.StateOpen:       false,
		domain.StatePrep:       false,
		domain.StateMassedUp:   true,
		domain.StateReconciled: true,
		domain.StateClosed:     true,
	} {
		r.State = state
		assert.Equalf(t, want, r.Frozen(), "état %s", state)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := sampleRaid()
	ip := 1400
	r.Signups["u1"].IP = &ip
	r.Privilege = &PrivilegeWindow{RoleID: "role1"}
	r.Expected = []string{"u1"}

	snap := r.Snapshot()

	snap.Signups["u1"].Status = domain.StatusWait
	*snap.Signups["u1"].IP = 999
	snap.Absent["nouveau"] = true
	snap.Privilege.RoleID = "autre"
	snap.Expected[0] = "modifié"
	snap.Template.Roles[0].Slots = 42

	assert.Equal(t, domain.StatusMain, r.Signups["u1"].Status)
	assert.Equal(t, 1400, *r.Signups["u1"].IP)
	assert.False(t, r.Absent["nouveau"])
	assert.Equal(t, "role1", r.Privilege.RoleID)
	assert.Equal(t, []string{"u1"}, r.Expected)
	assert.Equal(t, 1, r.Template.Roles[0].Slots)
}

func TestCountAssigned(t *testing.T) {
	r := sampleRaid()
	assert.Equal(t, 1, r.CountAssigned("tank"))
	assert.Equal(t, 1, r.CountAssigned("dps"))
	assert.Zero(t, r.CountAssigned("healer"))
}
