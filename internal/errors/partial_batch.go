package errors

import "fmt"

// PartialBatchFailure reports the items of a log batch that did not make it.
// Items that succeeded are already committed.
type PartialBatchFailure struct {
	Logged int
	Errors []string
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("%d task(s) logged, %d failed", e.Logged, len(e.Errors))
}
