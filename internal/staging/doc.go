// Package staging sweeps partial files that no current item owns.
//
// An interrupted run can leave a partial sibling behind for a recording that
// the next run no longer selects, for example because it was deleted from the
// recorder or excluded by pattern. Those files would otherwise never be
// cleared, so the runner sweeps them once it holds the run lock.
package staging
