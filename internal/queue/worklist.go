package queue

// WorkList is the fixed, ordered set of items a run processes. Membership and
// order never change after construction; only item state does.
type WorkList struct {
	items []*Item
	ready chan struct{}
}

// NewWorkList wraps items in the given order.
func NewWorkList(items []*Item) *WorkList {
	owned := make([]*Item, len(items))
	copy(owned, items)
	return &WorkList{items: owned, ready: make(chan struct{}, 1)}
}

// Items returns the items in work order.
func (w *WorkList) Items() []*Item {
	out := make([]*Item, len(w.items))
	copy(out, w.items)
	return out
}

// Len returns the number of items.
func (w *WorkList) Len() int {
	return len(w.items)
}

// InStatus returns the items currently in status, in work order.
func (w *WorkList) InStatus(status Status) []*Item {
	var out []*Item
	for _, item := range w.items {
		if item.Status() == status {
			out = append(out, item)
		}
	}
	return out
}

// CanProgress reports whether lane may still have work: for the fetch lane,
// any item not yet past fetching; for the transcode lane, any item not yet
// done or errored.
func (w *WorkList) CanProgress(lane Lane) bool {
	for _, item := range w.items {
		status := item.Status()
		switch lane {
		case LaneFetch:
			if status == StatusToFetch || status == StatusFetching {
				return true
			}
		case LaneTranscode:
			if !status.IsTerminal() {
				return true
			}
		}
	}
	return false
}

// Notify wakes a lane waiting on Ready. Repeated calls before the lane wakes
// collapse into one.
func (w *WorkList) Notify() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled by Notify.
func (w *WorkList) Ready() <-chan struct{} {
	return w.ready
}

// Counts tallies items per status.
func (w *WorkList) Counts() map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, item := range w.items {
		counts[item.Status()]++
	}
	return counts
}

// Snapshots copies every item's state in work order.
func (w *WorkList) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(w.items))
	for _, item := range w.items {
		out = append(out, item.Snapshot())
	}
	return out
}
