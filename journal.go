package mirror

import (
	"sort"
	"time"

	"github.com/etnz/mirror/date"
)

// event is a single fact of the replayed timeline.
type event interface {
	// at returns the instant of the event.
	at() time.Time
	// emits is true for snapshot requests, they sort after any other event of the same day.
	emits() bool
	// play applies the event to the replay.
	play(r *replay) error
}

// orderEvent is an executed order, dated at its creation time.
type orderEvent struct{ order Order }

func (e orderEvent) at() time.Time { return e.order.CreatedAt }
func (e orderEvent) emits() bool   { return false }

// actionEvent is a corporate action, dated at the start of its effective day.
type actionEvent struct{ action CorporateAction }

func (e actionEvent) at() time.Time { return e.action.Header().Date.Time() }
func (e actionEvent) emits() bool   { return false }

// emitEvent requests a snapshot of the positions at the end of a day.
type emitEvent struct{ on date.Date }

func (e emitEvent) at() time.Time { return e.on.Time() }
func (e emitEvent) emits() bool   { return true }

// journal is the queue of events still to be replayed, in chronological order.
type journal struct {
	events []event
}

// dayOf returns the UTC day of an event.
func dayOf(e event) date.Date { return date.Of(e.at().UTC()) }

// before is the ordering of the journal: by day, then snapshot requests last, then by instant.
func before(a, b event) bool {
	if c := dayOf(a).Compare(dayOf(b)); c != 0 {
		return c < 0
	}
	if a.emits() != b.emits() {
		return b.emits()
	}
	return a.at().Before(b.at())
}

// push adds events to the journal and keeps it sorted. Ties keep the insertion order.
func (j *journal) push(events ...event) {
	j.events = append(j.events, events...)
	sort.SliceStable(j.events, func(a, b int) bool { return before(j.events[a], j.events[b]) })
}

// pop removes and returns the next event.
func (j *journal) pop() (event, bool) {
	if len(j.events) == 0 {
		return nil, false
	}
	e := j.events[0]
	j.events = j.events[1:]
	return e, true
}
