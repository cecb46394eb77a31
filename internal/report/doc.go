// Package report is the run's console collaborator. A Reporter draws fetch
// progress (a byte progress bar on a terminal, sampled log lines elsewhere),
// prints a line as each stage starts and finishes, and renders the classifier
// plan and the end-of-run summary as tables.
package report
