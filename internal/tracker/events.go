package tracker

import "github.com/julianstephens/tracker/internal/logger"

// EventKind names a change to the tracker collection.
type EventKind string

const (
	EventTrackerAdded     EventKind = "tracker.added"
	EventTrackerEdited    EventKind = "tracker.edited"
	EventTrackerDeleted   EventKind = "tracker.deleted"
	EventTrackerPinned    EventKind = "tracker.pinned"
	EventTrackerUnpinned  EventKind = "tracker.unpinned"
	EventCompletionToggle EventKind = "completion.toggled"
	EventCategoryAdded    EventKind = "category.added"
	EventCategoryDeleted  EventKind = "category.deleted"
	EventSettingsChanged  EventKind = "settings.changed"
)

// Event tells subscribers that visible results may be stale.
type Event struct {
	Kind       EventKind
	TrackerID  string
	CategoryID string
	Day        string
}

const subscriberBuffer = 32

// Subscribe returns a channel of change events and a function that ends the
// subscription. Slow subscribers miss events rather than block writers.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Service) publish(e Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			logger.Debug("Dropping event for slow subscriber", "subscriber", id, "kind", e.Kind)
		}
	}
}
