package systems

import "time"

// System represents a simulation processor driven by the Manager.
// Update runs once per rendered frame with a variable delta; FixedUpdate runs
// zero or more times per frame with the fixed physics delta.
type System interface {
	Name() string
	Priority() Priority

	Update(deltaTime float64) error
	FixedUpdate(fixedDeltaTime float64) error
}

// Priority defines execution order. Higher priorities run first.
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 700
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Pass identifies which of the two per-frame passes is executing.
type Pass uint8

const (
	PassUpdate Pass = iota
	PassFixedUpdate
)

func (p Pass) String() string {
	if p == PassFixedUpdate {
		return "fixed_update"
	}
	return "update"
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(elapsed time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	m.LastExecutionTime = time.Now()
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// Func adapts plain functions into a System. Nil passes are skipped.
type Func struct {
	ID            string
	Order         Priority
	OnUpdate      func(deltaTime float64) error
	OnFixedUpdate func(fixedDeltaTime float64) error
}

func (f Func) Name() string       { return f.ID }
func (f Func) Priority() Priority { return f.Order }

func (f Func) Update(deltaTime float64) error {
	if f.OnUpdate == nil {
		return nil
	}
	return f.OnUpdate(deltaTime)
}

func (f Func) FixedUpdate(fixedDeltaTime float64) error {
	if f.OnFixedUpdate == nil {
		return nil
	}
	return f.OnFixedUpdate(fixedDeltaTime)
}
