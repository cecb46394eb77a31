// Package selection classifies the recorder listing into display groups and
// builds the run's work list.
//
// Recordings the operator has not marked keep are dropped first and the rest
// are ordered by capture time. An include pattern, when set, restricts the run
// to matching titles; otherwise an exclude pattern removes matching titles.
// Files already present at the destination or in the edited directory are
// skipped unless the force flag is set.
package selection
