package queue

import (
	"fmt"
	"sync"
	"time"

	"nropster/internal/catalog"
	"nropster/internal/services"
)

// Item is one recording's job for a single run. The descriptor, inclusion
// flag, and paths are fixed at creation; status and statistics change as the
// lanes work on it and are guarded by the item's mutex.
type Item struct {
	Position  int
	Recording catalog.Recording
	Included  bool
	Paths     Paths

	mu                sync.Mutex
	status            Status
	history           []Status
	fetchDuration     time.Duration
	transcodeDuration time.Duration
	lastError         services.Failure
	busyCount         int
}

// NewItem creates an item in the initial to_fetch status.
func NewItem(position int, rec catalog.Recording, paths Paths, included bool) *Item {
	return &Item{
		Position:  position,
		Recording: rec,
		Included:  included,
		Paths:     paths,
		status:    StatusToFetch,
		history:   []Status{StatusToFetch},
	}
}

// Status returns the current status.
func (i *Item) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// History returns every status the item has held, in order.
func (i *Item) History() []Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Status, len(i.history))
	copy(out, i.history)
	return out
}

// Transition moves the item to status to on behalf of lane. It fails when
// the edge is not legal or lane does not own the current status.
func (i *Item) Transition(lane Lane, to Status) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.transitionLocked(lane, to)
}

func (i *Item) transitionLocked(lane Lane, to Status) error {
	from := i.status
	owner, ok := from.Owner()
	if !ok {
		return fmt.Errorf("item %d: %s is terminal", i.Position, from)
	}
	if owner != lane {
		return fmt.Errorf("item %d: %s lane cannot move item out of %s", i.Position, lane, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("item %d: illegal transition %s -> %s", i.Position, from, to)
	}
	if from == StatusFetching && to == StatusFetched {
		// A successful retry supersedes the busy failure that preceded it.
		i.lastError = services.Failure{}
	}
	i.status = to
	i.history = append(i.history, to)
	return nil
}

// Fail records err against the item and applies the matching error edge: a
// busy failure during fetching returns the item to to_fetch, anything else
// marks it errored. The resulting status is returned.
func (i *Item) Fail(lane Lane, err error) (Status, error) {
	failure := services.Describe(err)
	if failure.Kind == services.KindNone {
		failure.Kind = services.KindFatal
		failure.Message = "failed without error detail"
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	target := StatusErrored
	if services.IsRetryable(err) && i.status == StatusFetching {
		target = StatusToFetch
		i.busyCount++
	}
	if terr := i.transitionLocked(lane, target); terr != nil {
		return i.status, terr
	}
	i.lastError = failure
	return target, nil
}

// RecordFetch stores the measured fetch duration.
func (i *Item) RecordFetch(d time.Duration) {
	i.mu.Lock()
	i.fetchDuration = d
	i.mu.Unlock()
}

// RecordTranscode stores the measured transcode duration.
func (i *Item) RecordTranscode(d time.Duration) {
	i.mu.Lock()
	i.transcodeDuration = d
	i.mu.Unlock()
}

// Snapshot is a consistent copy of an item's state for reporting.
type Snapshot struct {
	Position          int
	Recording         catalog.Recording
	Included          bool
	Paths             Paths
	Status            Status
	FetchDuration     time.Duration
	TranscodeDuration time.Duration
	LastError         services.Failure
	BusyRetries       int
}

// Snapshot copies the item's current state.
func (i *Item) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Snapshot{
		Position:          i.Position,
		Recording:         i.Recording,
		Included:          i.Included,
		Paths:             i.Paths,
		Status:            i.status,
		FetchDuration:     i.fetchDuration,
		TranscodeDuration: i.transcodeDuration,
		LastError:         i.lastError,
		BusyRetries:       i.busyCount,
	}
}

// Title is the recording's full title.
func (i *Item) Title() string {
	return i.Recording.FullTitle()
}
