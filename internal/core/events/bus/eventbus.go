package bus

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNilHandler is returned by Subscribe for a nil handler.
var ErrNilHandler = errors.New("bus: nil handler")

type event struct {
	typ  string
	src  string
	at   time.Time
	data any
}

func (e event) Type() string         { return e.typ }
func (e event) Source() string       { return e.src }
func (e event) Timestamp() time.Time { return e.at }
func (e event) Data() any            { return e.data }

// NewEvent creates an Event stamped with the current time.
func NewEvent(typ, src string, data any) Event {
	return event{typ: typ, src: src, at: time.Now(), data: data}
}

// Payload extracts typed event data.
func Payload[T any](e Event) (T, bool) {
	v, ok := e.Data().(T)
	return v, ok
}

type subscription struct {
	id      string
	typ     string
	handler EventHandler
	bus     *inMemoryBus

	mu     sync.Mutex
	active bool
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.typ }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()
	if wasActive {
		s.bus.remove(s)
	}
	return nil
}

type inMemoryBus struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

// New creates an empty EventBus.
func New() EventBus {
	return &inMemoryBus{subs: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	s := &subscription{
		id:      uuid.NewString(),
		typ:     eventType,
		handler: handler,
		bus:     b,
		active:  true,
	}
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], s)
	b.mu.Unlock()
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[s.typ] = slices.DeleteFunc(b.subs[s.typ], func(o *subscription) bool { return o == s })
	if len(b.subs[s.typ]) == 0 {
		delete(b.subs, s.typ)
	}
}

func (b *inMemoryBus) Publish(e Event) error {
	b.mu.RLock()
	// handlers may subscribe or cancel while being called
	subs := slices.Clone(b.subs[e.Type()])
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		if err := s.handler(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var errs []error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
