package console

// Source tells whether an event came from the person at the keyboard or was
// produced by the session itself.
type Source int

const (
	// UserSourced events come from the transport: keystrokes and focus
	// reports.
	UserSourced Source = iota
	// SyntheticSourced events are generated by the session, such as the
	// typewriter's keystrokes.
	SyntheticSourced
)

func (s Source) String() string {
	switch s {
	case UserSourced:
		return "user"
	case SyntheticSourced:
		return "synthetic"
	default:
		return "unknown"
	}
}

// EventKind is the family of an Event.
type EventKind int

const (
	EventKey EventKind = iota
	EventFocus
)

// Event is one input delivered to a session. Every event carries its Source
// so suppression never depends on shared mutable flags.
type Event struct {
	Kind    EventKind
	Source  Source
	key     key
	focused bool
}

func keyEvent(src Source, k key) Event {
	return Event{Kind: EventKey, Source: src, key: k}
}

func focusEvent(src Source, focused bool) Event {
	return Event{Kind: EventFocus, Source: src, focused: focused}
}
