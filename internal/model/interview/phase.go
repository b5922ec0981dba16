package interview

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle state of one interview session.
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseEvaluating Phase = "EVALUATING"
	PhaseCompleted  Phase = "COMPLETED"
)

// Event drives a phase transition.
type Event string

const (
	// EventStart 首次调用模型且没有历史。
	EventStart Event = "start"
	// EventReply 候选人在面试中发送一条消息。
	EventReply Event = "reply"
	// EventFinish 候选人主动结束面试，模型不会触发该事件。
	EventFinish Event = "finish"
	// EventEvaluated 评估报告已生成并通过解析。
	EventEvaluated Event = "evaluated"
)

// ErrInvalidTransition is returned when an event is not allowed in the current phase.
var ErrInvalidTransition = errors.New("invalid interview phase transition")

var transitions = map[Phase]map[Event]Phase{
	PhaseNotStarted: {EventStart: PhaseInProgress},
	PhaseInProgress: {EventReply: PhaseInProgress, EventFinish: PhaseEvaluating},
	PhaseEvaluating: {EventEvaluated: PhaseCompleted},
}

// Advance returns the phase reached by applying ev to p.
func (p Phase) Advance(ev Event) (Phase, error) {
	next, ok := transitions[p][ev]
	if !ok {
		return p, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, p)
	}
	return next, nil
}

// PhaseOf derives the phase of a stateless request from the transcript it carries.
// A transcript without any non-error message has not started yet.
func PhaseOf(history []Message) Phase {
	for _, m := range history {
		if !m.IsError {
			return PhaseInProgress
		}
	}
	return PhaseNotStarted
}
