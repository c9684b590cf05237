package enumerable

import "time"

// QueryEvent describes one finished operation of a Context. Matched is the
// size of the filtered working set, Returned the number of documents or
// aggregate entries handed back to the caller.
type QueryEvent struct {
	Operation string
	Matched   int
	Returned  int
	Duration  time.Duration
	Err       error
}

const (
	OperationExecute   = "execute"
	OperationFirst     = "first"
	OperationOne       = "one"
	OperationLast      = "last"
	OperationIterate   = "iterate"
	OperationShift     = "shift"
	OperationSize      = "size"
	OperationCount     = "count"
	OperationSum       = "sum"
	OperationAvg       = "avg"
	OperationMin       = "min"
	OperationMax       = "max"
	OperationDistinct  = "distinct"
	OperationGroup     = "group"
	OperationAggregate = "aggregate"
)
