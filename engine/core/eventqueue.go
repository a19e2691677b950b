package core

// EventQueue buffers window events raised during a poll and hands them out
// in order afterwards. Within one batch only the last resize and the last
// mouse move are kept, and zero-sized resizes (minimized windows) are
// dropped.
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Push(ev Event) {
	switch ev := ev.(type) {
	case EventResize:
		if ev.W < 1 || ev.H < 1 {
			return
		}
		q.replace(ev, func(e Event) bool { _, ok := e.(EventResize); return ok })
		return
	case EventMouseMove:
		q.replace(ev, func(e Event) bool { _, ok := e.(EventMouseMove); return ok })
		return
	}
	q.events = append(q.events, ev)
}

// replace drops the previous event of the same kind and appends ev.
func (q *EventQueue) replace(ev Event, same func(Event) bool) {
	for i, e := range q.events {
		if same(e) {
			q.events = append(q.events[:i], q.events[i+1:]...)
			break
		}
	}
	q.events = append(q.events, ev)
}

func (q *EventQueue) Len() int { return len(q.events) }

// Flush calls fn for every buffered event and empties the queue. Events
// pushed by fn land in the next batch.
func (q *EventQueue) Flush(fn func(Event)) {
	batch := q.events
	q.events = nil
	for _, ev := range batch {
		fn(ev)
	}
}
