package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	EnabledSystems    uint32
	Frames            uint64
	FixedSteps        uint64
	TotalUpdateTime   time.Duration
	SystemErrorCount  map[string]uint32
}

type entry struct {
	system  System
	seq     int
	enabled bool
	metrics Metrics
}

// Manager runs registered systems in priority order. Ties keep registration order.
// It is not safe for concurrent use; the simulation drives it from one goroutine.
type Manager struct {
	logger  log.Log
	entries []*entry
	byName  map[string]*entry
	seq     int
	metrics ManagerMetrics
	onError func(name string, pass Pass, err error)
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		logger: logger.With(log.String("component", "systems")),
		byName: make(map[string]*entry),
		metrics: ManagerMetrics{
			SystemErrorCount: make(map[string]uint32),
		},
	}
}

// Register adds a system. Names must be unique.
func (m *Manager) Register(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	name := s.Name()
	if _, ok := m.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, name)
	}
	m.seq++
	e := &entry{system: s, seq: m.seq, enabled: true}
	m.entries = append(m.entries, e)
	m.byName[name] = e
	sort.SliceStable(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		if a.system.Priority() != b.system.Priority() {
			return a.system.Priority() > b.system.Priority()
		}
		return a.seq < b.seq
	})
	m.logger.Debug("system registered",
		log.String("system", name),
		log.Int("priority", int(s.Priority())))
	return nil
}

func (m *Manager) Unregister(name string) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(m.byName, name)
	for i, cur := range m.entries {
		if cur == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager) Get(name string) (System, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

func (m *Manager) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *Manager) Enable(name string) error  { return m.setEnabled(name, true) }
func (m *Manager) Disable(name string) error { return m.setEnabled(name, false) }

func (m *Manager) setEnabled(name string, on bool) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = on
	return nil
}

// ExecutionOrder lists system names in the order they run.
func (m *Manager) ExecutionOrder() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.system.Name())
	}
	return out
}

// OnSystemError registers a callback invoked for every failing system pass.
func (m *Manager) OnSystemError(fn func(name string, pass Pass, err error)) {
	m.onError = fn
}

// Update runs the variable-timestep pass.
func (m *Manager) Update(deltaTime float64) error {
	m.metrics.Frames++
	return m.run(PassUpdate, deltaTime)
}

// FixedUpdate runs one fixed-timestep pass.
func (m *Manager) FixedUpdate(fixedDeltaTime float64) error {
	m.metrics.FixedSteps++
	return m.run(PassFixedUpdate, fixedDeltaTime)
}

// run executes every enabled system. A failing system does not stop the pass;
// errors are joined and returned after all systems ran.
func (m *Manager) run(pass Pass, dt float64) error {
	start := time.Now()
	var all error
	for _, e := range m.entries {
		if !e.enabled {
			continue
		}
		t0 := time.Now()
		var err error
		if pass == PassFixedUpdate {
			err = e.system.FixedUpdate(dt)
		} else {
			err = e.system.Update(dt)
		}
		e.metrics.record(time.Since(t0), err)
		if err != nil {
			name := e.system.Name()
			m.metrics.SystemErrorCount[name]++
			if m.onError != nil {
				m.onError(name, pass, err)
			}
			all = errors.Join(all, fmt.Errorf("%s %s: %w", name, pass, err))
		}
	}
	m.metrics.TotalUpdateTime += time.Since(start)
	return all
}

func (m *Manager) GetMetrics() ManagerMetrics {
	out := m.metrics
	out.RegisteredSystems = uint32(len(m.entries))
	out.EnabledSystems = 0
	for _, e := range m.entries {
		if e.enabled {
			out.EnabledSystems++
		}
	}
	out.SystemErrorCount = make(map[string]uint32, len(m.metrics.SystemErrorCount))
	for k, v := range m.metrics.SystemErrorCount {
		out.SystemErrorCount[k] = v
	}
	return out
}

func (m *Manager) GetSystemMetrics(name string) (Metrics, bool) {
	e, ok := m.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}
