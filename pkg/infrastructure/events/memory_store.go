package events

import (
	"sync"

	"go.uber.org/zap"
)

// InMemoryEventStore keeps every stream in memory and fans events out to
// subscribers. Handlers run on their own goroutines.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	allEvents   []Event
	logger      *zap.Logger
	mutex       sync.RWMutex
	handlers    sync.WaitGroup
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	versioned := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	handlers := append([]EventHandler(nil), s.subscribers[versioned.EventType]...)
	s.mutex.Unlock()

	s.notify(versioned, handlers)
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}
	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if !sameHandler(h, handler) {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}

// Wait blocks until every dispatched handler has returned
func (s *InMemoryEventStore) Wait() {
	s.handlers.Wait()
}

func (s *InMemoryEventStore) notify(event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		s.handlers.Add(1)
		go func(h EventHandler) {
			defer s.handlers.Done()
			if err := h.Handle(event); err != nil {
				s.logger.Warn("event handler failed",
					zap.String("event_type", event.Type()),
					zap.String("stream", event.StreamID()),
					zap.Error(err))
			}
		}(handler)
	}
}

// sameHandler compares handlers without panicking on uncomparable func types
func sameHandler(a, b EventHandler) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
