package table

// queuedReset is one deferred state reset.
type queuedReset struct {
	key string
	fn  func()
}

// resetQueue is a FIFO of deferred state resets, flushed synchronously after
// the getter that triggered them finishes.
//
// Requests are coalesced by key: a key already waiting in the queue is not
// queued again, so several upstream recomputations in one read produce a
// single reset.
type resetQueue struct {
	items    []queuedReset
	pending  map[string]bool
	flushing bool
}

func newResetQueue() *resetQueue {
	return &resetQueue{
		items:   make([]queuedReset, 0, 4),
		pending: make(map[string]bool),
	}
}

// push queues fn under key unless key is already queued.
// Returns false if the request was coalesced into an earlier one.
func (q *resetQueue) push(key string, fn func()) bool {
	if q.pending[key] {
		return false
	}
	q.pending[key] = true
	q.items = append(q.items, queuedReset{key: key, fn: fn})
	return true
}

// flush runs queued resets in FIFO order, including any queued while
// flushing. Returns true if at least one reset ran. Re-entrant calls made by
// a running reset return false immediately.
func (q *resetQueue) flush() bool {
	if q.flushing || len(q.items) == 0 {
		return false
	}
	q.flushing = true
	defer func() { q.flushing = false }()

	for len(q.items) > 0 {
		item := q.items[0]

		// Nil out the slot so the closure can be collected.
		q.items[0] = queuedReset{}
		if len(q.items) == 1 {
			q.items = q.items[:0]
		} else {
			q.items = q.items[1:]
		}

		delete(q.pending, item.key)
		item.fn()
	}
	return true
}

// Len returns the number of queued resets.
func (q *resetQueue) Len() int {
	return len(q.items)
}
