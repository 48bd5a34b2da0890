package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcilePartitions(t *testing.T) {
	report := Reconcile(
		[]string{"a", "b", "c"},
		[]string{"b", "c", "x"},
	)

	assert.Equal(t, []string{"b", "c"}, report.PresentExpected)
	assert.Equal(t, []string{"x"}, report.PresentUnexpected)
	assert.Equal(t, []string{"a"}, report.MissingExpected)
}

func TestReconcilePartitionsAreDisjointAndCoverUnion(t *testing.T) {
	expected := []string{"a", "b", "c", "d"}
	observed := []string{"c", "d", "e", "f"}
	report := Reconcile(expected, observed)

	seen := map[string]int{}
	for _, part := range [][]string{report.PresentExpected, report.PresentUnexpected, report.MissingExpected} {
		for _, id := range part {
			seen[id]++
		}
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "id %s apparaît dans %d partitions", id, n)
	}
	assert.Len(t, seen, 6)
}

func TestReconcileTreatsInputsAsSets(t *testing.T) {
	report := Reconcile([]string{"a", "a"}, []string{"a", "a"})

	assert.Equal(t, []string{"a"}, report.PresentExpected)
	assert.Empty(t, report.PresentUnexpected)
	assert.Empty(t, report.MissingExpected)
}

func TestReconcileEmptyInputs(t *testing.T) {
	report := Reconcile(nil, nil)
	assert.Empty(t, report.PresentExpected)
	assert.Empty(t, report.PresentUnexpected)
	assert.Empty(t, report.MissingExpected)

	report = Reconcile(nil, []string{"x"})
	assert.Equal(t, []string{"x"}, report.PresentUnexpected)

	report = Reconcile([]string{"a"}, nil)
	assert.Equal(t, []string{"a"}, report.MissingExpected)
}

func TestStateOrder(t *testing.T) {
	assert.True(t, StateAtLeast(StateMassedUp, StatePrep))
	assert.True(t, StateAtLeast(StateMassedUp, StateMassedUp))
	assert.False(t, StateAtLeast(StatePrep, StateMassedUp))
	assert.Equal(t, -1, StateRank("inconnu"))
}
