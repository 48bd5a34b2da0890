package domain

import "sort"

// Report is the attendance reconciliation result: three pairwise disjoint
// partitions whose union is expected ∪ observed. All slices are sorted.
type Report struct {
	PresentExpected   []string
	PresentUnexpected []string
	MissingExpected   []string
}

// Reconcile partitions expected against an observed presence snapshot.
// Pure and deterministic; inputs are treated as sets.
func Reconcile(expected, observed []string) Report {
	exp := make(map[string]bool, len(expected))
	for _, id := range expected {
		exp[id] = true
	}
	obs := make(map[string]bool, len(observed))
	for _, id := range observed {
		obs[id] = true
	}

	var rep Report
	for id := range exp {
		if obs[id] {
			rep.PresentExpected = append(rep.PresentExpected, id)
		} else {
			rep.MissingExpected = append(rep.MissingExpected, id)
		}
	}
	for id := range obs {
		if !exp[id] {
			rep.PresentUnexpected = append(rep.PresentUnexpected, id)
		}
	}
	sort.Strings(rep.PresentExpected)
	sort.Strings(rep.PresentUnexpected)
	sort.Strings(rep.MissingExpected)
	return rep
}
