// Package runner executes one nropster run end to end.
//
// Run takes the run lock in the work directory, verifies directories and
// external programs, loads the recorder listing (live or cached), classifies
// it, and hands the resulting work list to the workflow manager with the
// reporter attached. The summary table is printed whether the run finished
// or was interrupted.
package runner
