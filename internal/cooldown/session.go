package cooldown

import (
	"github.com/ConserveLee/questr/internal/geo"
)

// EventKind classifies one observed clipboard value.
type EventKind int

const (
	EventIgnored EventKind = iota // not a coordinate
	EventFirst                    // first coordinate of the session
	EventRepeat                   // same coordinate copied twice in a row
	EventHop                      // new coordinate, cooldown computed
)

func (k EventKind) String() string {
	switch k {
	case EventIgnored:
		return "ignored"
	case EventFirst:
		return "first"
	case EventRepeat:
		return "repeat"
	case EventHop:
		return "hop"
	default:
		return "unknown"
	}
}

// Event is the result of Session.Observe.
type Event struct {
	Kind     EventKind
	From     geo.Coordinate
	To       geo.Coordinate
	Distance float64 // km
	Minutes  float64
}

// Session remembers the last coordinate seen by a clipboard watcher.
type Session struct {
	table Table
	last  geo.Coordinate
	seen  bool
}

// NewSession creates a session using table for lookups.
func NewSession(table Table) *Session {
	return &Session{table: table}
}

// Last returns the last coordinate and whether one has been seen.
func (s *Session) Last() (geo.Coordinate, bool) {
	return s.last, s.seen
}

// Observe feeds one clipboard value into the session.
func (s *Session) Observe(text string) Event {
	c, err := geo.Parse(text)
	if err != nil {
		return Event{Kind: EventIgnored}
	}

	if !s.seen {
		s.last, s.seen = c, true
		return Event{Kind: EventFirst, To: c}
	}

	from := s.last
	s.last = c

	dist := geo.Distance(from, c)
	minutes, ok := s.table.Minutes(dist)
	if !ok {
		return Event{Kind: EventRepeat, From: from, To: c}
	}
	return Event{Kind: EventHop, From: from, To: c, Distance: dist, Minutes: minutes}
}
