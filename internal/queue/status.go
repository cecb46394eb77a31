package queue

// Status is an item's position in the fetch/transcode lifecycle.
type Status string

const (
	StatusToFetch     Status = "to_fetch"
	StatusFetching    Status = "fetching"
	StatusFetched     Status = "fetched"
	StatusTranscoding Status = "transcoding"
	StatusDone        Status = "done"
	StatusErrored     Status = "errored"
)

// Lane identifies the worker that owns a set of statuses.
type Lane string

const (
	LaneFetch     Lane = "fetch"
	LaneTranscode Lane = "transcode"
)

var allStatuses = []Status{
	StatusToFetch,
	StatusFetching,
	StatusFetched,
	StatusTranscoding,
	StatusDone,
	StatusErrored,
}

// transitions lists every legal edge. Anything absent is rejected.
var transitions = map[Status][]Status{
	StatusToFetch:     {StatusFetching},
	StatusFetching:    {StatusFetched, StatusToFetch, StatusErrored},
	StatusFetched:     {StatusTranscoding},
	StatusTranscoding: {StatusDone, StatusErrored},
}

// owners partitions the non-terminal statuses between the two lanes. Only
// the owning lane may move an item out of a status.
var owners = map[Status]Lane{
	StatusToFetch:     LaneFetch,
	StatusFetching:    LaneFetch,
	StatusFetched:     LaneTranscode,
	StatusTranscoding: LaneTranscode,
}

// AllStatuses returns the statuses in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no edge leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusErrored
}

// Owner returns the lane allowed to move an item out of s. Terminal statuses
// have no owner.
func (s Status) Owner() (Lane, bool) {
	lane, ok := owners[s]
	return lane, ok
}
