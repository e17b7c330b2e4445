package control

import (
	"sync/atomic"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/vessel"
)

// Manual returns an action set from outside, e.g. by a key press in the
// live monitor. Each set action is used once, then it falls back to hold.
type Manual struct {
	next atomic.Int32
}

func NewManual() *Manual { return &Manual{} }

// SetAction queues the action for the next step.
func (m *Manual) SetAction(a int) {
	m.next.Store(int32(a))
}

func (m *Manual) Act(env.Observation, env.Telemetry) int {
	return int(m.next.Swap(vessel.ActionHold))
}

// Script replays a fixed action sequence and holds once it runs out.
type Script struct {
	Actions []int
	Loop    bool
	pos     int
}

func NewScript(actions []int, loop bool) *Script {
	return &Script{Actions: actions, Loop: loop}
}

func (s *Script) Act(env.Observation, env.Telemetry) int {
	if len(s.Actions) == 0 {
		return vessel.ActionHold
	}
	if s.pos >= len(s.Actions) {
		if !s.Loop {
			return vessel.ActionHold
		}
		s.pos = 0
	}
	a := s.Actions[s.pos]
	s.pos++
	return a
}

func (s *Script) Reset() { s.pos = 0 }
