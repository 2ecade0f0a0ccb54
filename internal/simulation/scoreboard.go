package simulation

import (
	"errors"
	"sync"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/events/bus"
)

// Stats are the running tallies of a session.
type Stats struct {
	Score     int                    `json:"score"`
	Spawned   int                    `json:"spawned"`
	Collected int                    `json:"collected"`
	Bounced   int                    `json:"bounced"`
	Despawned int                    `json:"despawned"`
	Expelled  int                    `json:"expelled"`
	Consumed  map[debris.Variant]int `json:"consumed"`
}

// TotalConsumed sums Consumed over every variant.
func (s Stats) TotalConsumed() int {
	n := 0
	for _, c := range s.Consumed {
		n += c
	}
	return n
}

// Scoreboard is the scoring collaborator. It only listens to the bus.
type Scoreboard struct {
	mu    sync.Mutex
	stats Stats
	subs  []bus.Subscription
}

func NewScoreboard(b bus.EventBus) (*Scoreboard, error) {
	s := &Scoreboard{stats: Stats{Consumed: make(map[debris.Variant]int)}}
	handlers := map[string]bus.EventHandler{
		EventDebrisSpawned:   s.count(func(st *Stats) { st.Spawned++ }),
		EventDebrisCollected: s.count(func(st *Stats) { st.Collected++ }),
		EventDebrisBounced:   s.count(func(st *Stats) { st.Bounced++ }),
		EventDebrisDespawned: s.count(func(st *Stats) { st.Despawned++ }),
		EventDebrisConsumed:  s.onConsumed,
		EventDebrisExpelled:  s.onExpelled,
	}
	for typ, h := range handlers {
		sub, err := b.Subscribe(typ, h)
		if err != nil {
			return nil, errors.Join(err, s.Close())
		}
		s.subs = append(s.subs, sub)
	}
	return s, nil
}

func (s *Scoreboard) count(apply func(*Stats)) bus.EventHandler {
	return func(bus.Event) error {
		s.mu.Lock()
		apply(&s.stats)
		s.mu.Unlock()
		return nil
	}
}

func (s *Scoreboard) onConsumed(e bus.Event) error {
	ev, ok := bus.Payload[ConsumedEvent](e)
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.stats.Score += ev.Score
	s.stats.Consumed[ev.Variant]++
	s.mu.Unlock()
	return nil
}

func (s *Scoreboard) onExpelled(e bus.Event) error {
	ev, ok := bus.Payload[ExpelledEvent](e)
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.stats.Expelled += ev.Count
	s.mu.Unlock()
	return nil
}

// Stats returns a copy of the tallies.
func (s *Scoreboard) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Consumed = make(map[debris.Variant]int, len(s.stats.Consumed))
	for v, n := range s.stats.Consumed {
		out.Consumed[v] = n
	}
	return out
}

// Close detaches the scoreboard from the bus.
func (s *Scoreboard) Close() error {
	var all error
	for _, sub := range s.subs {
		all = errors.Join(all, sub.Cancel())
	}
	s.subs = nil
	return all
}
