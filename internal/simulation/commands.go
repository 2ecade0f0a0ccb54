package simulation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/collection"
	"github.com/fermisquasar/Filling-the-Void/internal/core/orbit"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad command argument")
)

// Command is one input the core accepts. Commands are applied between frames.
type Command interface {
	apply(w *World)
	String() string
}

type SetCollecting struct{ On bool }

type Expel struct{ Mode collection.Mode }

type SetOrbitSpeed struct{ Speed float64 }

type SetOrbitDirection struct{ Direction orbit.Direction }

func (c SetCollecting) apply(w *World)     { w.collector.SetCollecting(c.On) }
func (c SetOrbitSpeed) apply(w *World)     { w.orbit.SetSpeed(c.Speed) }
func (c SetOrbitDirection) apply(w *World) { w.orbit.SetDirection(c.Direction) }
func (c Expel) apply(w *World)             { w.expel(c.Mode) }

func (c SetCollecting) String() string     { return fmt.Sprintf("collect(%t)", c.On) }
func (c Expel) String() string             { return fmt.Sprintf("expel(%s)", c.Mode) }
func (c SetOrbitSpeed) String() string     { return fmt.Sprintf("orbit_speed(%g)", c.Speed) }
func (c SetOrbitDirection) String() string { return fmt.Sprintf("orbit_direction(%s)", c.Direction) }

// ParseCommand builds a command from its script name and argument.
func ParseCommand(name, value string) (Command, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "collect", "set_collecting":
		if value == "" {
			return SetCollecting{On: true}, nil
		}
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: collect %q", ErrBadArgument, value)
		}
		return SetCollecting{On: on}, nil
	case "release":
		return SetCollecting{On: false}, nil
	case "expel":
		mode, err := collection.ParseMode(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadArgument, err)
		}
		return Expel{Mode: mode}, nil
	case "orbit_speed", "set_orbit_speed":
		speed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: orbit_speed %q", ErrBadArgument, value)
		}
		return SetOrbitSpeed{Speed: speed}, nil
	case "orbit_direction", "set_orbit_direction":
		dir, ok := orbit.ParseDirection(strings.ToLower(value))
		if !ok {
			return nil, fmt.Errorf("%w: orbit_direction %q", ErrBadArgument, value)
		}
		return SetOrbitDirection{Direction: dir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

type timedCommand struct {
	at  float64
	cmd Command
}

// Script is a time-ordered queue of commands.
type Script struct {
	steps []timedCommand
	next  int
}

// ParseScript converts config steps into a script ordered by time. Steps
// sharing a time keep their file order.
func ParseScript(steps []config.ScriptStep) (*Script, error) {
	s := &Script{steps: make([]timedCommand, 0, len(steps))}
	var errs []error
	for i, st := range steps {
		cmd, err := ParseCommand(st.Command, st.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("script[%d]: %w", i, err))
			continue
		}
		s.steps = append(s.steps, timedCommand{at: st.At, cmd: cmd})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.SliceStable(s.steps, func(i, j int) bool { return s.steps[i].at < s.steps[j].at })
	return s, nil
}

// Due pops every command scheduled at or before t.
func (s *Script) Due(t float64) []Command {
	if s == nil {
		return nil
	}
	var out []Command
	for s.next < len(s.steps) && s.steps[s.next].at <= t {
		out = append(out, s.steps[s.next].cmd)
		s.next++
	}
	return out
}

// Remaining is the number of commands not yet issued.
func (s *Script) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.steps) - s.next
}
